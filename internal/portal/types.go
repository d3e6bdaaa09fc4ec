package portal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// LoginRequest is the body posted to the login endpoint.
type LoginRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	TimezoneOffset int    `json:"timezoneOffset"`
}

// LoginResponse carries errors, an MFA challenge, or a session token.
type LoginResponse struct {
	Errors            APIErrors `json:"errors,omitempty"`
	MfaChallengeToken string    `json:"MfaChallengeToken,omitempty"`
	MfaChallengePhone string    `json:"MfaChallengePhone,omitempty"`
	SessionToken      string    `json:"SessionToken,omitempty"`
}

// HasChallenge reports whether the login requires a second factor.
func (r LoginResponse) HasChallenge() bool {
	return r.MfaChallengeToken != ""
}

type mfaInitiateRequest struct {
	ChallengeToken string `json:"challengeToken"`
	PhoneNumber    string `json:"phoneNumber"`
}

type mfaCompleteRequest struct {
	ChallengeToken string `json:"challengeToken"`
	Code           string `json:"code"`
}

// SessionResponse is returned by MFA completion.
type SessionResponse struct {
	Errors       APIErrors `json:"errors,omitempty"`
	SessionToken string    `json:"SessionToken,omitempty"`
}

// SearchRequest scopes a clinical report search. Empty filters mean "all".
type SearchRequest struct {
	ClinicianIDs  []string `json:"clinicianIds"`
	LocationIDs   []string `json:"locationIds"`
	StartDate     string   `json:"startDate"`
	EndDate       string   `json:"endDate"`
	ProgramParams []string `json:"programParams"`
}

// normalize replaces nil filters with empty lists so they encode as [].
func (r SearchRequest) normalize() SearchRequest {
	if r.ClinicianIDs == nil {
		r.ClinicianIDs = []string{}
	}
	if r.LocationIDs == nil {
		r.LocationIDs = []string{}
	}
	if r.ProgramParams == nil {
		r.ProgramParams = []string{}
	}
	return r
}

type errorEnvelope struct {
	Errors APIErrors `json:"errors"`
}

// APIErrors holds the messages of an "errors" payload. The portal is not
// consistent about its shape, so strings, lists, objects with a message and
// field maps are all accepted.
type APIErrors []string

// UnmarshalJSON implements json.Unmarshaler.
func (e *APIErrors) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*e = nil
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode errors payload: %w", err)
	}

	*e = flattenErrors(raw)
	return nil
}

func flattenErrors(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return []string{val}
	case bool:
		if val {
			return []string{"request failed"}
		}
		return nil
	case []any:
		var out []string
		for _, item := range val {
			out = append(out, flattenErrors(item)...)
		}
		return out
	case map[string]any:
		for _, key := range []string{"message", "Message", "error", "description"} {
			if msg, ok := val[key].(string); ok && msg != "" {
				return []string{msg}
			}
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var out []string
		for _, k := range keys {
			for _, msg := range flattenErrors(val[k]) {
				out = append(out, k+": "+msg)
			}
		}
		return out
	default:
		return []string{fmt.Sprint(val)}
	}
}

// Empty reports whether no errors were returned.
func (e APIErrors) Empty() bool {
	return len(e) == 0
}

func (e APIErrors) String() string {
	return strings.Join(e, "; ")
}
