// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"strings"
	"text/template"
)

// maxReformulations caps how many alternative phrasings a single
// reformulation round produces.
const maxReformulations = 3

var reformulatePromptTmpl = template.Must(template.New("reformulate").Parse(`You are a research query specialist. The query below returned few results. Produce {{.Count}} alternative phrasings that could surface additional relevant sources. Use synonyms, broader terms, or adjacent terminology.

Original query: {{.Query}}

Respond with one phrasing per line, no numbering, no commentary.
`))

// QueryReformulator produces alternative phrasings of a sparse query.
// Failures are absorbed: discovery proceeds with the original results.
type QueryReformulator struct {
	Client Client
}

// Reformulate implements the discovery collaborator contract.
func (r QueryReformulator) Reformulate(ctx context.Context, query string) []string {
	var buf bytes.Buffer
	err := reformulatePromptTmpl.Execute(&buf, struct {
		Query string
		Count int
	}{Query: query, Count: maxReformulations})
	if err != nil {
		return nil
	}

	reply, err := r.Client.Complete(ctx, buf.String())
	if err != nil {
		return nil
	}

	var alts []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.Trim(strings.TrimSpace(line), `"`)
		line = strings.TrimLeft(line, "-*0123456789. ")
		if line == "" || strings.EqualFold(line, query) {
			continue
		}
		alts = append(alts, line)
		if len(alts) == maxReformulations {
			break
		}
	}
	return alts
}
