// ABOUTME: Front-line HTTP gateway: message submission, history, and SSE delivery.
// ABOUTME: Orchestrates the store and the responder backend for each conversation.
package gateway
