package model

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Item is one scraped post as returned by the dataset endpoint.
type Item struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Followers   int64  `json:"followers"`
	Text        string `json:"text"`
	CreatedAt   string `json:"created_at"`
}

// Field lookup chains. The first path holding a non-empty value wins; the
// twitter-scraper layout comes first, the author-based layout second.
var (
	idPaths          = []string{"id", "id_str", "tweetId"}
	handlePaths      = []string{"user.screenName", "author.userName", "user.screen_name", "user.username"}
	namePaths        = []string{"user.name", "author.name"}
	descriptionPaths = []string{"user.description", "author.description"}
	followerPaths    = []string{"user.followersCount", "author.followers", "user.followers_count"}
	textPaths        = []string{"fullText", "text", "full_text"}
	createdAtPaths   = []string{"createdAt", "created_at"}
)

// DecodeItem reads an Item from one dataset record. Absent or null fields
// decode to zero values; malformed input yields an empty Item.
func DecodeItem(raw []byte) Item {
	doc := gjson.ParseBytes(raw)
	return Item{
		ID:          firstString(doc, idPaths),
		Handle:      firstString(doc, handlePaths),
		Name:        firstString(doc, namePaths),
		Description: firstString(doc, descriptionPaths),
		Followers:   firstInt(doc, followerPaths),
		Text:        firstString(doc, textPaths),
		CreatedAt:   firstString(doc, createdAtPaths),
	}
}

// DecodeItems decodes every record in order.
func DecodeItems[T ~[]byte](raws []T) []Item {
	items := make([]Item, len(raws))
	for i, r := range raws {
		items[i] = DecodeItem([]byte(r))
	}
	return items
}

// Permalink builds the public URL of the post.
func (it Item) Permalink() string {
	return fmt.Sprintf("https://x.com/%s/status/%s", it.Handle, it.ID)
}

func firstString(doc gjson.Result, paths []string) string {
	for _, p := range paths {
		r := doc.Get(p)
		if !r.Exists() || r.Type == gjson.Null {
			continue
		}
		if s := r.String(); s != "" {
			return s
		}
	}
	return ""
}

func firstInt(doc gjson.Result, paths []string) int64 {
	for _, p := range paths {
		r := doc.Get(p)
		if r.Exists() && r.Type != gjson.Null {
			return r.Int()
		}
	}
	return 0
}
