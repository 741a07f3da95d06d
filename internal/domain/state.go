package domain

// Statistics are the session counters. They only ever grow.
type Statistics struct {
	CyclesCompleted int
	MinutesStudied  int
	TasksCompleted  int
}

// creditExpiry records one finished block worth minutes of study.
func (st *Statistics) creditExpiry(minutes int) {
	st.CyclesCompleted++
	if minutes > 0 {
		st.MinutesStudied += minutes
	}
}

// creditTask records one task checked off.
func (st *Statistics) creditTask() {
	st.TasksCompleted++
}

// Snapshot is the read-only view handed to renderers and tools.
type Snapshot struct {
	Session  Session
	Clock    string
	Progress float64
	// Seq orders snapshots of one controller. A later command always
	// yields a larger Seq; zero means unsequenced.
	Seq uint64
}

// NewSnapshot derives the display values of s.
func NewSnapshot(s Session) Snapshot {
	return Snapshot{
		Session:  s.Clone(),
		Clock:    FormatClock(s.RemainingSeconds),
		Progress: ProgressFraction(s),
	}
}
