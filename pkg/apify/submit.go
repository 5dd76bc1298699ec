package apify

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// SearchInput is the actor input for the tweet search actors. Both the
// current (searchTerms/maxItems) and the legacy (queries/maxTweets) keys are
// populated so either actor generation accepts it.
type SearchInput struct {
	SearchTerms     []string `json:"searchTerms"`
	Queries         []string `json:"queries"`
	MaxItems        int      `json:"maxItems"`
	MaxTweets       int      `json:"maxTweets"`
	AddUserInfo     bool     `json:"addUserInfo"`
	IncludeReplies  bool     `json:"includeReplies"`
	IncludeRetweets bool     `json:"includeRetweets"`
	Language        string   `json:"tweetsLanguage,omitempty"`
	TweetLanguage   string   `json:"tweetLanguage,omitempty"`
}

// SearchOptions are the knobs of a search run besides queries and ceiling.
type SearchOptions struct {
	AddUserInfo     bool
	IncludeReplies  bool
	IncludeRetweets bool
	Language        string
}

// NewSearchInput builds the actor input for the given queries.
func NewSearchInput(queries []string, maxResults int, opts SearchOptions) SearchInput {
	return SearchInput{
		SearchTerms:     queries,
		Queries:         queries,
		MaxItems:        maxResults,
		MaxTweets:       maxResults,
		AddUserInfo:     opts.AddUserInfo,
		IncludeReplies:  opts.IncludeReplies,
		IncludeRetweets: opts.IncludeRetweets,
		Language:        opts.Language,
		TweetLanguage:   opts.Language,
	}
}

// Submit validates the input and starts exactly one run of actorID. It never
// retries: a repeated POST would start a second billable run.
func Submit(ctx context.Context, client Client, actorID string, in SearchInput) (string, error) {
	if len(in.SearchTerms) == 0 {
		return "", &SubmissionError{Reason: "no queries"}
	}
	for i, q := range in.SearchTerms {
		if strings.TrimSpace(q) == "" {
			return "", &SubmissionError{Reason: "empty query at position " + strconv.Itoa(i)}
		}
	}
	if in.MaxItems <= 0 {
		return "", &SubmissionError{Reason: "result ceiling must be positive"}
	}
	if strings.TrimSpace(actorID) == "" {
		return "", &SubmissionError{Reason: "no actor id"}
	}

	id, err := client.StartRun(ctx, actorID, in)
	if err != nil {
		var se *SubmissionError
		if errors.As(err, &se) {
			return "", err
		}
		return "", &SubmissionError{Reason: "start request failed", Err: err}
	}
	return id, nil
}
