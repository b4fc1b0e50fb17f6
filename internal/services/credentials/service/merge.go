package service

import (
	"encoding/json"

	perr "recordsync/internal/platform/errors"

	"golang.org/x/oauth2"
)

// mergeToken overlays the non-zero fields of next onto the stored blob
// fields the refresh omitted, such as refresh_token, are retained
func mergeToken(stored json.RawMessage, next *oauth2.Token) (json.RawMessage, error) {
	base := map[string]any{}
	if len(stored) > 0 {
		if err := json.Unmarshal(stored, &base); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "credential: decode stored token")
		}
	}

	raw, err := json.Marshal(next)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "credential: encode token")
	}
	var over map[string]any
	if err := json.Unmarshal(raw, &over); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "credential: decode token")
	}
	for k, v := range over {
		if isZero(v) {
			continue
		}
		base[k] = v
	}

	out, err := json.Marshal(base)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "credential: encode merged token")
	}
	return out, nil
}

func isZero(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == "" || x == "0001-01-01T00:00:00Z"
	case float64:
		return x == 0
	case bool:
		return !x
	}
	return false
}

func decodeToken(raw json.RawMessage) (*oauth2.Token, error) {
	var t oauth2.Token
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "credential: decode token")
	}
	if t.AccessToken == "" && t.RefreshToken == "" {
		return nil, perr.InvalidArgf("credential: stored token is empty")
	}
	return &t, nil
}
