package remoteauth

import (
	"encoding/json"
	"errors"
	"fmt"
)

// InteractiveRequestOptions describes an authentication operation that
// requires leaving the current page (a redirect or popup). The options are
// serialized into a single opaque string and attached to the navigation
// history entry so they survive the full-page redirect round trip.
type InteractiveRequestOptions struct {
	// Interaction is why the redirect is being requested.
	Interaction InteractionType

	// ReturnURL is the URL to navigate back to once the interaction
	// completes.
	ReturnURL string

	// Scopes are the scopes to request, in order.
	Scopes []string

	// additional holds provider-specific parameters. Values are kept as
	// raw JSON so unknown shapes round-trip losslessly.
	additional map[string]json.RawMessage
}

// interactiveRequestWire is the JSON shape shared with the bridge and the
// history entry state. Property names are part of the wire contract.
type interactiveRequestWire struct {
	ReturnURL   string                     `json:"returnUrl"`
	Scopes      []string                   `json:"scopes"`
	Interaction InteractionType            `json:"interaction"`
	Additional  map[string]json.RawMessage `json:"additionalRequestParameters,omitempty"`
}

// AddParameter records an extra provider-specific parameter to send with
// the interactive request. It fails if a parameter with that name exists.
func (o *InteractiveRequestOptions) AddParameter(name string, value any) error {
	if name == "" {
		return errors.New("remoteauth: parameter name is empty")
	}
	if _, exists := o.additional[name]; exists {
		return fmt.Errorf("remoteauth: parameter %q already set", name)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("remoteauth: encode parameter %q: %w", name, err)
	}
	if o.additional == nil {
		o.additional = make(map[string]json.RawMessage)
	}
	o.additional[name] = raw
	return nil
}

// Parameter decodes the named extra parameter into out. It reports whether
// the parameter was present and decoded.
func (o *InteractiveRequestOptions) Parameter(name string, out any) bool {
	raw, ok := o.additional[name]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// RemoveParameter deletes the named extra parameter, reporting whether it
// was present.
func (o *InteractiveRequestOptions) RemoveParameter(name string) bool {
	if _, ok := o.additional[name]; !ok {
		return false
	}
	delete(o.additional, name)
	return true
}

// MarshalJSON implements json.Marshaler using the wire shape.
func (o InteractiveRequestOptions) MarshalJSON() ([]byte, error) {
	scopes := o.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	return json.Marshal(interactiveRequestWire{
		ReturnURL:   o.ReturnURL,
		Scopes:      scopes,
		Interaction: o.Interaction,
		Additional:  o.additional,
	})
}

// UnmarshalJSON implements json.Unmarshaler using the wire shape.
func (o *InteractiveRequestOptions) UnmarshalJSON(data []byte) error {
	var wire interactiveRequestWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	o.ReturnURL = wire.ReturnURL
	o.Scopes = wire.Scopes
	o.Interaction = wire.Interaction
	o.additional = wire.Additional
	return nil
}

// ToState serializes the options into the opaque history entry state form.
func (o *InteractiveRequestOptions) ToState() (string, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("remoteauth: serialize interactive request: %w", err)
	}
	return string(data), nil
}

// InteractiveRequestFromState recovers options previously produced by
// ToState from the history entry state of a navigation.
func InteractiveRequestFromState(state string) (*InteractiveRequestOptions, error) {
	var o InteractiveRequestOptions
	if err := json.Unmarshal([]byte(state), &o); err != nil {
		return nil, fmt.Errorf("remoteauth: parse interactive request state: %w", err)
	}
	return &o, nil
}
