// Package options parses the Note-Options request header, which lets
// the webhook sender tune enrichment per request.
package options

import (
	"strings"

	"github.com/dunglas/httpsfv"
)

// Header is the request header carrying note options.
const Header = "Note-Options"

// NoteOptions are per-request enrichment toggles.
// Zero value means full enrichment with the configured defaults.
type NoteOptions struct {
	// DisableSample suppresses the sample recommendation.
	DisableSample bool
	// Strategy overrides the sample selection strategy
	// ("ranked" or "random"); empty keeps the configured default.
	Strategy string
}

// Parse extracts note options from a Note-Options header value.
// Format: RFC 8941 Dictionary, e.g. `sample=?0, strategy="random"`.
//
// Examples:
//   - `sample=?0`                      → sample suppressed
//   - `strategy="random"`              → random selection
//   - `sample=?1, strategy="ranked"`   → defaults, spelled out
//
// An absent, empty, or malformed header yields the defaults; a bad
// option header is never a reason to drop an order webhook.
func Parse(header string) NoteOptions {
	var opts NoteOptions

	header = strings.TrimSpace(header)
	if header == "" {
		return opts
	}

	dict, err := httpsfv.UnmarshalDictionary([]string{header})
	if err != nil {
		return NoteOptions{}
	}

	if member, ok := dict.Get("sample"); ok {
		if item, ok := member.(httpsfv.Item); ok {
			if enabled, ok := item.Value.(bool); ok && !enabled {
				opts.DisableSample = true
			}
		}
	}

	if member, ok := dict.Get("strategy"); ok {
		if item, ok := member.(httpsfv.Item); ok {
			switch v := item.Value.(type) {
			case string:
				opts.Strategy = v
			case httpsfv.Token:
				opts.Strategy = string(v)
			}
		}
	}

	return opts
}
