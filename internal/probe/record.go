package probe

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is ISO8601 in UTC with microsecond precision.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

type Status string

const (
	StatusNoError  Status = "NOERROR"
	StatusNoAnswer Status = "NOANSWER"
	StatusNXDomain Status = "NXDOMAIN"
	StatusTimeout  Status = "TIMEOUT"
	StatusError    Status = "ERROR"
)

// Record describes one issued query. It is written out and then dropped.
type Record struct {
	Time    time.Time
	Label   string
	Name    string
	QType   string
	Status  Status
	Answers int
	RData   []string
	Err     error
}

func (r *Record) String() string {
	return r.Format(false)
}

// Format renders the query line, optionally followed by the answer data.
func (r *Record) Format(withRData bool) string {
	line := fmt.Sprintf("%s %s %s %s answers=%d", r.Time.UTC().Format(TimeLayout), r.Name, r.QType, r.Status, r.Answers)
	if withRData && len(r.RData) > 0 {
		line += " rdata=" + strings.Join(r.RData, ", ")
	}
	return line
}
