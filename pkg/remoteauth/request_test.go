package remoteauth

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

func TestInteractiveRequestRoundTrip(t *testing.T) {
	original := &InteractiveRequestOptions{
		Interaction: InteractionSignIn,
		ReturnURL:   "https://www.example.com/base/fetchData",
		Scopes:      []string{"openid", "profile", "api"},
	}
	if err := original.AddParameter("prompt", "login"); err != nil {
		t.Fatalf("AddParameter() error = %v", err)
	}
	if err := original.AddParameter("maxAge", 300); err != nil {
		t.Fatalf("AddParameter() error = %v", err)
	}

	state, err := original.ToState()
	if err != nil {
		t.Fatalf("ToState() error = %v", err)
	}

	restored, err := InteractiveRequestFromState(state)
	if err != nil {
		t.Fatalf("InteractiveRequestFromState() error = %v", err)
	}

	if restored.Interaction != InteractionSignIn {
		t.Errorf("Interaction = %q, want %q", restored.Interaction, InteractionSignIn)
	}
	if restored.ReturnURL != original.ReturnURL {
		t.Errorf("ReturnURL = %q, want %q", restored.ReturnURL, original.ReturnURL)
	}
	if !reflect.DeepEqual(restored.Scopes, original.Scopes) {
		t.Errorf("Scopes = %v, want %v", restored.Scopes, original.Scopes)
	}

	var prompt string
	if !restored.Parameter("prompt", &prompt) || prompt != "login" {
		t.Errorf("Parameter(prompt) = %q, want %q", prompt, "login")
	}
	var maxAge int
	if !restored.Parameter("maxAge", &maxAge) || maxAge != 300 {
		t.Errorf("Parameter(maxAge) = %d, want %d", maxAge, 300)
	}
}

func TestInteractiveRequestRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		original := &InteractiveRequestOptions{
			Interaction: rapid.SampledFrom([]InteractionType{
				InteractionSignIn, InteractionGetToken, InteractionSignOut,
			}).Draw(t, "interaction"),
			ReturnURL: rapid.String().Draw(t, "returnUrl"),
			Scopes:    rapid.SliceOfN(rapid.StringMatching(`[a-z.:/]{1,20}`), 0, 8).Draw(t, "scopes"),
		}
		names := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-zA-Z_]{1,12}`), 0, 4, rapid.ID[string]).Draw(t, "names")
		for _, name := range names {
			if err := original.AddParameter(name, rapid.String().Draw(t, "value-"+name)); err != nil {
				t.Fatalf("AddParameter(%q) error = %v", name, err)
			}
		}

		state, err := original.ToState()
		if err != nil {
			t.Fatalf("ToState() error = %v", err)
		}
		restored, err := InteractiveRequestFromState(state)
		if err != nil {
			t.Fatalf("InteractiveRequestFromState() error = %v", err)
		}

		if restored.Interaction != original.Interaction {
			t.Fatalf("Interaction = %q, want %q", restored.Interaction, original.Interaction)
		}
		if restored.ReturnURL != original.ReturnURL {
			t.Fatalf("ReturnURL = %q, want %q", restored.ReturnURL, original.ReturnURL)
		}
		if len(original.Scopes) != 0 && !reflect.DeepEqual(restored.Scopes, original.Scopes) {
			t.Fatalf("Scopes = %v, want %v", restored.Scopes, original.Scopes)
		}
		for _, name := range names {
			var value string
			if !restored.Parameter(name, &value) {
				t.Fatalf("Parameter(%q) missing after round trip", name)
			}
		}
	})
}

func TestInteractiveRequestAddParameterTwiceFails(t *testing.T) {
	o := &InteractiveRequestOptions{Interaction: InteractionSignIn}
	if err := o.AddParameter("prompt", "login"); err != nil {
		t.Fatalf("AddParameter() error = %v", err)
	}
	if err := o.AddParameter("prompt", "consent"); err == nil {
		t.Fatal("second AddParameter() succeeded, want error")
	}
	if !o.RemoveParameter("prompt") {
		t.Fatal("RemoveParameter() = false, want true")
	}
	if o.RemoveParameter("prompt") {
		t.Fatal("second RemoveParameter() = true, want false")
	}
}

func TestInteractiveRequestFromStateMalformed(t *testing.T) {
	if _, err := InteractiveRequestFromState("{not json"); err == nil {
		t.Fatal("InteractiveRequestFromState() succeeded on malformed state")
	}
}
