package domain

import "time"

// TimeLayout is the timestamp format stored on announcements and log entries.
const TimeLayout = "2006-01-02 15:04:05"

// Action tags recorded in the audit log. The values match the historical
// logs.json files and must not be translated.
const (
	ActionAddUser            = "เพิ่มผู้ใช้"
	ActionEditUser           = "แก้ไขข้อมูล"
	ActionDeleteUser         = "ลบผู้ใช้"
	ActionAddAnnouncement    = "เพิ่มประกาศ"
	ActionDeleteAnnouncement = "ลบประกาศ"
)

// SystemActor is the actor recorded for changes made outside a user session.
const SystemActor = "system"

// LogEntry is a single audit record. Entries are append-only.
type LogEntry struct {
	Time   string `json:"time"`
	Actor  string `json:"actor"`
	Action string `json:"action"`
	Target string `json:"target"`
}

// FormatTime renders t with TimeLayout.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}
