package storage

import "testing"

func TestObjectKey(t *testing.T) {
	cases := []struct {
		processID string
		path      string
		want      string
	}{
		{"proc-123", "/tmp/work/proc-123/final.mp4", "videos/proc-123/final.mp4"},
		{"abc", "final.mp4", "videos/abc/final.mp4"},
		{"abc", "nested/dir/output_video.mp4", "videos/abc/output_video.mp4"},
	}

	for _, tc := range cases {
		if got := ObjectKey(tc.processID, tc.path); got != tc.want {
			t.Errorf("ObjectKey(%q, %q) = %q, want %q", tc.processID, tc.path, got, tc.want)
		}
	}
}
