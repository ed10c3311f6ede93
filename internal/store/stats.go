package store

import (
	"os"

	"github.com/rcliao/student-model/internal/model"
)

// Stats summarizes a document and its files.
type Stats struct {
	Path           string          `json:"path"`
	SizeBytes      int64           `json:"size_bytes"`
	HasBackup      bool            `json:"has_backup"`
	Created        model.Timestamp `json:"created"`
	LastUpdated    model.Timestamp `json:"last_updated"`
	Profile        string          `json:"student_profile,omitempty"`
	Concepts       int             `json:"concepts"`
	Sessions       int             `json:"sessions"`
	Misconceptions int             `json:"misconceptions"`
	Unresolved     int             `json:"unresolved_misconceptions"`
	AvgMastery     float64         `json:"avg_mastery"`
}

// Stats returns document statistics.
func (s *Store) Stats(doc *model.Document) *Stats {
	st := &Stats{
		Path:           s.path,
		Created:        doc.Metadata.Created,
		LastUpdated:    doc.Metadata.LastUpdated,
		Profile:        doc.Metadata.StudentProfile,
		Concepts:       len(doc.Concepts),
		Sessions:       len(doc.Sessions),
		Misconceptions: len(doc.Misconceptions),
		AvgMastery:     doc.AverageMastery(),
	}

	if info, err := os.Stat(s.path); err == nil {
		st.SizeBytes = info.Size()
	}
	if _, err := os.Stat(s.BackupPath()); err == nil {
		st.HasBackup = true
	}
	for _, m := range doc.Misconceptions {
		if !m.Resolved {
			st.Unresolved++
		}
	}
	return st
}
