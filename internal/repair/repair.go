// Package repair recovers structured records from the imperfectly
// formatted JSON that generative models return. It tries minimal, safe
// transformations first and falls back to substring extraction only
// when everything else fails, to avoid accepting garbage.
package repair

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrParse marks a response that no repair stage could parse.
var ErrParse = eris.New("repair: unparseable response")

// ErrMalformedShape marks a response that parsed but is not an array.
var ErrMalformedShape = eris.New("repair: response is not an array")

var (
	fenceOpenRe   = regexp.MustCompile("^```(?:json)?[ \t]*\n?")
	fenceCloseRe  = regexp.MustCompile("\n?```[ \t]*$")
	trailingSepRe = regexp.MustCompile(`,(\s*[}\]])`)
	bareKeyRe     = regexp.MustCompile(`([{,])\s*([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	arrayRe       = regexp.MustCompile(`\[[\s\S]*\]`)
	objectRe      = regexp.MustCompile(`\{[\s\S]*\}`)
)

// Parse turns raw generator text into the elements of a JSON array.
// Stages, each attempted only when the previous fails:
//
//  1. strip markdown code fences
//  2. strict parse
//  3. drop trailing commas before a closing bracket or brace
//  4. quote bare identifier keys
//  5. parse the first bracket-delimited substring
//  6. parse the first brace-delimited substring
//
// A response that parses to anything other than an array fails with
// ErrMalformedShape. If every stage fails, the strict-parse error is
// propagated as ErrParse.
func Parse(raw string) ([]json.RawMessage, error) {
	text := fenceCloseRe.ReplaceAllString(fenceOpenRe.ReplaceAllString(strings.TrimSpace(raw), ""), "")

	elems, firstErr := decodeArray(text)
	if firstErr == nil {
		return elems, nil
	}
	if eris.Is(firstErr, ErrMalformedShape) {
		return nil, firstErr
	}

	text = trailingSepRe.ReplaceAllString(text, "$1")
	if elems, err := decodeArray(text); err == nil {
		return elems, nil
	} else if eris.Is(err, ErrMalformedShape) {
		return nil, err
	}

	text = bareKeyRe.ReplaceAllString(text, `$1"$2":`)
	if elems, err := decodeArray(text); err == nil {
		return elems, nil
	} else if eris.Is(err, ErrMalformedShape) {
		return nil, err
	}

	if sub := arrayRe.FindString(text); sub != "" {
		if elems, err := decodeArray(sub); err == nil {
			return elems, nil
		}
	}

	if sub := objectRe.FindString(text); sub != "" {
		if _, err := decodeArray(sub); err != nil && eris.Is(err, ErrMalformedShape) {
			return nil, err
		}
	}

	return nil, eris.Wrapf(ErrParse, "%v", firstErr)
}

// decodeArray parses text as JSON, requiring the top-level value to be
// an array. It returns ErrMalformedShape for valid non-array JSON.
func decodeArray(text string) ([]json.RawMessage, error) {
	var probe any
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return nil, err
	}
	if _, ok := probe.([]any); !ok {
		return nil, eris.Wrapf(ErrMalformedShape, "got %T", probe)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(text), &elems); err != nil {
		return nil, err
	}
	return elems, nil
}
