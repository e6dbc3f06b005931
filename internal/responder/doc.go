// ABOUTME: Reply-generation backend: the /respond HTTP surface and its client.
// ABOUTME: Both ends of the gateway->responder wire contract live here.
package responder
