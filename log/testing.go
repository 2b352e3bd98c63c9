package log

import "fmt"

// TB is the subset of testing.TB used by Testing, letting test code log
// through the same Logger interface production code uses.
type TB interface {
	Errorf(string, ...interface{})
	Fatalf(string, ...interface{})
	Logf(string, ...interface{})
	Helper()
}

// Testing routes Logger calls to a testing.TB instead of stderr/stdout, so
// a test's -v output shows engine log lines inline with its own.
type Testing struct {
	TB
	tags []interface{}
}

// NewTesting returns a Testing logger writing through tb.
func NewTesting(tb TB) *Testing { return &Testing{TB: tb} }

func (l *Testing) Debug(m string, kv ...interface{}) {
	l.Helper()
	l.Logf("%s", tfmt("DEB ", m, kv, l.tags))
}
func (l *Testing) Error(m string, kv ...interface{}) {
	l.Helper()
	l.Errorf("%s", tfmt("ERR ", m, kv, l.tags))
}
func (l *Testing) Crit(m string, kv ...interface{}) {
	l.Helper()
	l.Fatalf("%s", tfmt("CRI ", m, kv, l.tags))
}
func (l *Testing) With(kv ...interface{}) Logger {
	t := make([]interface{}, 0, len(kv)+len(l.tags))
	t = append(t, kv...)
	t = append(t, l.tags...)
	return &Testing{TB: l.TB, tags: t}
}

func tfmt(lvl, msg string, all ...[]interface{}) string {
	s := lvl + msg
	for _, tags := range all {
		for i := 0; i+1 < len(tags); i += 2 {
			s += fmt.Sprintf(" %v=%v", tags[i], tags[i+1])
		}
	}
	return s
}
