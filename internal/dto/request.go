// Package dto decodes loosely typed transport payloads into domain requests.
package dto

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/adflow/pkg/domain"
)

// DecodeRequest builds a Request from a flat or nested payload.
//
// Stage fields may sit at the top level or under "fields", and numeric
// fields accept strings ("script_index": "2"). Unknown keys are ignored.
func DecodeRequest(payload map[string]any) (domain.Request, error) {
	flat := make(map[string]any, len(payload))
	for k, v := range payload {
		if k == "fields" {
			continue
		}
		flat[k] = v
	}
	if nested, ok := payload["fields"].(map[string]any); ok {
		for k, v := range nested {
			if _, set := flat[k]; !set {
				flat[k] = v
			}
		}
	}

	var req domain.Request
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &req,
	})
	if err != nil {
		return req, err
	}
	if err := dec.Decode(flat); err != nil {
		return req, fmt.Errorf("invalid request payload: %w", err)
	}
	return req, nil
}
