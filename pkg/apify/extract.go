package apify

import "github.com/tidwall/gjson"

// Extractor pulls a single string field out of a JSON document.
type Extractor func(body []byte) (string, bool)

// Path returns an Extractor reading a gjson path. Numbers are rendered as
// their literal text; empty strings count as absent.
func Path(path string) Extractor {
	return func(body []byte) (string, bool) {
		res := gjson.GetBytes(body, path)
		if !res.Exists() || res.Type == gjson.Null {
			return "", false
		}
		v := res.String()
		return v, v != ""
	}
}

// FirstOf tries each extractor in order and returns the first match.
func FirstOf(body []byte, chain ...Extractor) (string, bool) {
	for _, ex := range chain {
		if v, ok := ex(body); ok {
			return v, true
		}
	}
	return "", false
}

// Field chains for the run endpoints. Apify wraps records in "data"; some
// proxies and older clients return the bare record.
var (
	runIDChain = []Extractor{
		Path("data.id"),
		Path("id"),
		Path("data.runId"),
		Path("runId"),
	}
	runStatusChain = []Extractor{
		Path("data.status"),
		Path("status"),
	}
	datasetIDChain = []Extractor{
		Path("data.defaultDatasetId"),
		Path("defaultDatasetId"),
		Path("data.datasetId"),
	}
)
