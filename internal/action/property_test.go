package action_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/volunteerhq/volunteer-api/internal/action"
	"github.com/volunteerhq/volunteer-api/internal/schema"
)

func bodyFor(payload map[string]any) string {
	raw, _ := json.Marshal(payload)
	return string(raw)
}

// TestValidRequestsEchoValidatedResponse checks that every valid payload
// yields a 200 whose body is the handler's value after response validation.
func TestValidRequestsEchoValidatedResponse(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	h := action.Execute(newDispatcher(), greetDef, greet)

	properties.Property("valid payloads produce the validated response", prop.ForAll(
		func(name string, number int) bool {
			resp := serve(h, http.MethodPost, "/greet", bodyFor(map[string]any{
				"name":  name,
				"child": map[string]any{"number": number},
			}))
			if resp.Code != http.StatusOK {
				return false
			}

			want, _ := greet(context.Background(), greetRequest{Name: name, Child: childPayload{Number: float64(number)}}, nil)
			once, err := schema.Roundtrip(want, schema.DecodeOptions{Strict: true, Scope: schema.ScopeResponse})
			if err != nil {
				return false
			}
			twice, err := schema.Roundtrip(once, schema.DecodeOptions{Strict: true, Scope: schema.ScopeResponse})
			if err != nil || twice != once {
				return false
			}

			var got greetResponse
			if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
				return false
			}
			return got == once
		},
		gen.Identifier(),
		gen.IntRange(-1_000_000, 1_000_000),
	))

	properties.TestingRun(t)
}

// TestInvalidRequestsNameTheField checks that a missing or wrong-typed field
// always yields a 500 naming the field's path.
func TestInvalidRequestsNameTheField(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	calls := 0
	h := action.Execute(newDispatcher(), greetDef, func(ctx context.Context, req greetRequest, actx *action.Context) (greetResponse, error) {
		calls++
		return greet(ctx, req, actx)
	})

	failsWith := func(body, path string) bool {
		resp := serve(h, http.MethodPost, "/greet", body)
		if resp.Code != http.StatusInternalServerError {
			return false
		}
		var failure action.Failure
		if err := json.Unmarshal(resp.Body.Bytes(), &failure); err != nil {
			return false
		}
		return !failure.Success && failure.Error != "" && strings.Contains(failure.Error, path)
	}

	properties.Property("missing required field", prop.ForAll(
		func(number int) bool {
			return failsWith(bodyFor(map[string]any{"child": map[string]any{"number": number}}), "name")
		},
		gen.Int(),
	))

	properties.Property("wrong-typed nested field", prop.ForAll(
		func(name, junk string) bool {
			return failsWith(bodyFor(map[string]any{
				"name":  name,
				"child": map[string]any{"number": "x" + junk},
			}), "child.number")
		},
		gen.Identifier(),
		gen.AlphaString(),
	))

	properties.Property("wrong-typed top-level field", prop.ForAll(
		func(number int) bool {
			return failsWith(bodyFor(map[string]any{"name": number}), "name")
		},
		gen.Int(),
	))

	properties.TestingRun(t)

	if calls != 0 {
		t.Errorf("handler ran %d times for invalid input", calls)
	}
}

// TestUnknownRequestKeysAreIgnored checks that extra keys never change what
// a permissive handler observes.
func TestUnknownRequestKeysAreIgnored(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("extra keys do not reach the handler", prop.ForAll(
		func(name string, extras map[string]string) bool {
			rec := &recording[greetRequest, greetResponse]{fn: greet}
			h := action.Execute(newDispatcher(), greetDef, rec.handle)

			payload := map[string]any{"name": name}
			for k, v := range extras {
				payload["extra_"+k] = v
			}
			resp := serve(h, http.MethodPost, "/greet", bodyFor(payload))

			return resp.Code == http.StatusOK &&
				len(rec.calls) == 1 &&
				rec.calls[0] == greetRequest{Name: name}
		},
		gen.Identifier(),
		gen.MapOf(gen.Identifier(), gen.AlphaString()),
	))

	properties.TestingRun(t)
}

// TestNoAccessAlwaysForbidden checks the 403 body never varies.
func TestNoAccessAlwaysForbidden(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("no access yields a bare 403", prop.ForAll(
		func(name, reason string) bool {
			h := action.Execute(newDispatcher(), greetDef, func(context.Context, greetRequest, *action.Context) (greetResponse, error) {
				return greetResponse{Greeting: name}, fmt.Errorf("%s: %w", reason, action.ErrNoAccess)
			})
			resp := serve(h, http.MethodGet, "/greet?name="+name, "")
			return resp.Code == http.StatusForbidden && strings.TrimSpace(resp.Body.String()) == `{"success":false}`
		},
		gen.Identifier(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
