// ABOUTME: Wire types for the gateway->responder call contract.
// ABOUTME: POST /respond {workspace, text, provider?, slow} -> {reply, engine}.

package responder

// RespondRequest is the JSON request body for POST /respond.
type RespondRequest struct {
	Workspace string `json:"workspace"`
	Text      string `json:"text"`
	Provider  string `json:"provider,omitempty"`
	Slow      bool   `json:"slow"`
}

// RespondResponse is the JSON response for POST /respond. Engine is the name
// that was actually resolved, which may differ from the requested provider
// when the registry fell back to its default.
type RespondResponse struct {
	Reply  string `json:"reply"`
	Engine string `json:"engine"`
}
