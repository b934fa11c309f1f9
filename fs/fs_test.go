package appfs

import (
	"io/fs"
	"testing"
)

func TestFS_layouts(t *testing.T) {
	for _, name := range []string{
		"templates/email/_base.gohtml",
		"templates/email/_base.txt",
		"templates/sms/_base.txt",
		"templates/email/mentorship_requested.gohtml",
		"templates/sms/mentorship_requested.txt",
		"migrations/00001_init.sql",
	} {
		if _, err := fs.Stat(FS, name); err != nil {
			t.Errorf("fs.Stat(%q) failed: %v", name, err)
		}
	}
}
