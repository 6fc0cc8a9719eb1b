// Package search ranks project functions against a free-text query with
// BM25, falling back to edit distance on names for typos.
package search

import (
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/morozRed/moveprobe/internal/index"
	"github.com/morozRed/moveprobe/internal/signature"
)

var tokenPattern = regexp.MustCompile(`[a-z0-9_]+`)

// Document is one indexed function.
type Document struct {
	ID        string // module::name
	Name      string
	Module    string
	Signature string
	File      string
	Length    int
	Terms     map[string]int
}

type Index struct {
	DocumentCount int
	AvgDocLength  float64
	DocFreq       map[string]int
	Documents     []Document
}

type Result struct {
	ID    string
	Name  string
	Score float64
}

// Build indexes every function reachable through idx.
func Build(idx *index.Index) *Index {
	if idx == nil {
		return &Index{DocFreq: map[string]int{}}
	}

	refs := idx.All()
	documents := make([]Document, 0, len(refs))
	docFreq := make(map[string]int)
	totalLength := 0

	for _, ref := range refs {
		sig := signature.Build(ref.Function)
		terms := buildTerms(ref.Function.Name, ref.Module.Name, sig, filepath.Base(ref.Module.FilePath))
		length := 0
		for _, count := range terms {
			length += count
		}
		if length == 0 {
			continue
		}

		documents = append(documents, Document{
			ID:        ref.Module.Name + "::" + ref.Function.Name,
			Name:      ref.Function.Name,
			Module:    ref.Module.Name,
			Signature: sig,
			File:      ref.Module.FilePath,
			Length:    length,
			Terms:     terms,
		})
		totalLength += length

		for term := range terms {
			docFreq[term]++
		}
	}

	sort.SliceStable(documents, func(i, j int) bool {
		return documents[i].ID < documents[j].ID
	})

	avgDocLength := 0.0
	if len(documents) > 0 {
		avgDocLength = float64(totalLength) / float64(len(documents))
	}

	return &Index{
		DocumentCount: len(documents),
		AvgDocLength:  avgDocLength,
		DocFreq:       docFreq,
		Documents:     documents,
	}
}

// Search returns up to limit matches, best first.
func Search(index *Index, query string, limit int) []Result {
	if index == nil || len(index.Documents) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = 10
	}

	queryTerms := tokenize(query)
	if len(queryTerms) == 0 {
		return nil
	}

	seenTerms := make(map[string]bool, len(queryTerms))
	uniqueTerms := make([]string, 0, len(queryTerms))
	for _, term := range queryTerms {
		if seenTerms[term] {
			continue
		}
		seenTerms[term] = true
		uniqueTerms = append(uniqueTerms, term)
	}

	k1 := 1.2
	b := 0.75
	n := float64(index.DocumentCount)
	avgLen := index.AvgDocLength
	if avgLen <= 0 {
		avgLen = 1
	}

	results := make([]Result, 0)
	for _, doc := range index.Documents {
		score := 0.0
		docLen := float64(doc.Length)
		for _, term := range uniqueTerms {
			tf := float64(doc.Terms[term])
			if tf <= 0 {
				continue
			}
			df := float64(index.DocFreq[term])
			if df <= 0 {
				continue
			}
			idf := math.Log(1.0 + ((n - df + 0.5) / (df + 0.5)))
			numerator := tf * (k1 + 1.0)
			denominator := tf + k1*(1.0-b+b*(docLen/avgLen))
			score += idf * (numerator / denominator)
		}
		if score > 0 {
			results = append(results, Result{ID: doc.ID, Name: doc.Name, Score: score})
		}
	}

	sortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	if len(results) == 0 {
		return fuzzyNameFallback(index.Documents, query, limit)
	}
	return results
}

// Suggest returns distinct function names close to a name that was not
// found, for "did you mean" hints.
func Suggest(index *Index, name string, limit int) []string {
	var names []string
	seen := make(map[string]bool)
	for _, r := range Search(index, name, limit*2) {
		if r.Name == name || seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		names = append(names, r.Name)
		if len(names) == limit {
			break
		}
	}
	return names
}

func buildTerms(name, module, sig, file string) map[string]int {
	terms := make(map[string]int)
	addWeighted(terms, name, 4)
	addWeighted(terms, module, 2)
	addWeighted(terms, sig, 1)
	addWeighted(terms, file, 1)
	return terms
}

// addWeighted counts each token and, for snake_case tokens, each word.
func addWeighted(terms map[string]int, value string, weight int) {
	for _, token := range tokenize(value) {
		terms[token] += weight
		if strings.Contains(token, "_") {
			for _, part := range strings.Split(token, "_") {
				if part != "" {
					terms[part] += weight
				}
			}
		}
	}
}

func tokenize(value string) []string {
	value = strings.ToLower(value)
	if value == "" {
		return nil
	}
	return tokenPattern.FindAllString(value, -1)
}

func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
}

func fuzzyNameFallback(documents []Document, query string, limit int) []Result {
	needle := normalizeForFuzzy(query)
	if needle == "" {
		return nil
	}

	results := make([]Result, 0)
	for _, doc := range documents {
		candidate := normalizeForFuzzy(doc.Name)
		if candidate == "" {
			continue
		}
		distance := levenshteinDistance(needle, candidate)
		threshold := max(len(candidate)/3, 2)
		if distance > threshold {
			continue
		}
		results = append(results, Result{ID: doc.ID, Name: doc.Name, Score: 1.0 / float64(1+distance)})
	}

	sortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func normalizeForFuzzy(value string) string {
	return strings.Join(tokenize(value), "")
}

func levenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		current := make([]int, len(b)+1)
		current[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			current[j] = min(current[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev = current
	}

	return prev[len(b)]
}
