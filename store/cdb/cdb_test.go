package cdb

import (
	"database/sql"
	"os"
	"testing"

	"github.com/Ahmed-Sermani/retweetrank/store/storetest"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(CockroachDBScoreStoreTestSuite))

type CockroachDBScoreStoreTestSuite struct {
	storetest.SuiteBase
	db *sql.DB
}

func Test(t *testing.T) {
	gc.TestingT(t)
}

func (s *CockroachDBScoreStoreTestSuite) SetUpSuite(c *gc.C) {
	dsn := os.Getenv("CDB_DSN")
	if dsn == "" {
		c.Skip("missing cdb dsn; skipping cdb test package")
	}

	st, err := NewCockroachDBScoreStore(dsn)
	c.Assert(err, gc.IsNil)
	s.SetStore(st)
	s.db = st.db
}

func (s *CockroachDBScoreStoreTestSuite) TearDownSuite(c *gc.C) {
	if s.db != nil {
		s.flushDB(c)
		c.Assert(s.db.Close(), gc.IsNil)
	}
}

func (s *CockroachDBScoreStoreTestSuite) SetUpTest(c *gc.C) {
	s.flushDB(c)
}

func (s *CockroachDBScoreStoreTestSuite) flushDB(c *gc.C) {
	_, err := s.db.Exec("DELETE FROM scores")
	c.Assert(err, gc.IsNil)
	_, err = s.db.Exec("DELETE FROM runs")
	c.Assert(err, gc.IsNil)
}
