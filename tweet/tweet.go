/*
   Turns line-delimited tweet JSON into retweet events for the graph builder.
*/
package tweet

import (
	"strconv"

	"github.com/Ahmed-Sermani/retweetrank/graph"
)

// User is the subset of the tweet author object needed to identify users.
type User struct {
	ID         int64  `json:"id"`
	IDStr      string `json:"id_str"`
	ScreenName string `json:"screen_name"`
}

// UserID returns the explicit id of the user; screen names are never used
// since users can change them.
func (u *User) UserID() string {
	if u == nil {
		return ""
	}
	if u.IDStr != "" {
		return u.IDStr
	}
	if u.ID != 0 {
		return strconv.FormatInt(u.ID, 10)
	}
	return ""
}

// Tweet is the subset of a tweet object relevant for building the retweet
// graph.
type Tweet struct {
	IDStr string `json:"id_str"`
	User  *User  `json:"user"`

	// RetweetedStatus references the original tweet when this tweet is a
	// retweet; it is nil for original tweets.
	RetweetedStatus *Tweet `json:"retweeted_status"`
}

// RetweetEvent returns the retweet event described by t. The second return
// value is false if t is not a retweet.
func (t *Tweet) RetweetEvent() (graph.RetweetEvent, bool) {
	if t.RetweetedStatus == nil {
		return graph.RetweetEvent{}, false
	}
	return graph.RetweetEvent{
		RetweetingUserID: t.User.UserID(),
		RetweetedUserID:  t.RetweetedStatus.User.UserID(),
	}, true
}
