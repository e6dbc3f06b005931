// ABOUTME: Pluggable reply engines and the registry that dispatches to them.
// ABOUTME: Engines are stateless strategies mapping (workspace, text) to a reply.
package engine
