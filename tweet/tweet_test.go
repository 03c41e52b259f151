package tweet_test

import (
	"github.com/Ahmed-Sermani/retweetrank/graph"
	"github.com/Ahmed-Sermani/retweetrank/tweet"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(TweetTestSuite))

type TweetTestSuite struct{}

func (s *TweetTestSuite) TestRetweetEvent(c *gc.C) {
	specs := []struct {
		descr  string
		tw     tweet.Tweet
		exp    graph.RetweetEvent
		exists bool
	}{
		{
			descr: "original tweet",
			tw:    tweet.Tweet{User: &tweet.User{IDStr: "a"}},
		},
		{
			descr: "string ids",
			tw: tweet.Tweet{
				User:            &tweet.User{IDStr: "a", ID: 1},
				RetweetedStatus: &tweet.Tweet{User: &tweet.User{IDStr: "b"}},
			},
			exp:    graph.RetweetEvent{RetweetingUserID: "a", RetweetedUserID: "b"},
			exists: true,
		},
		{
			descr: "numeric id fallback",
			tw: tweet.Tweet{
				User:            &tweet.User{ID: 17},
				RetweetedStatus: &tweet.Tweet{User: &tweet.User{ID: 99, ScreenName: "ninety_nine"}},
			},
			exp:    graph.RetweetEvent{RetweetingUserID: "17", RetweetedUserID: "99"},
			exists: true,
		},
		{
			descr: "missing retweeted user",
			tw: tweet.Tweet{
				User:            &tweet.User{IDStr: "a"},
				RetweetedStatus: &tweet.Tweet{},
			},
			exp:    graph.RetweetEvent{RetweetingUserID: "a"},
			exists: true,
		},
	}

	for specIndex, spec := range specs {
		c.Logf("[spec %d] %s", specIndex, spec.descr)
		ev, ok := spec.tw.RetweetEvent()
		c.Assert(ok, gc.Equals, spec.exists)
		c.Assert(ev, gc.DeepEquals, spec.exp)
	}
}
