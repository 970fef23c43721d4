package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTray_LoadingDismissSuccess(t *testing.T) {
	var tr Tray

	tr.Loading("Saving...")
	tr.Loading("Still saving...")
	assert.Equal(t, []Notice{{Kind: Loading, Text: "Still saving..."}}, tr.Pending())

	tr.Dismiss()
	tr.Success("Saved")
	assert.Equal(t, []Notice{{Kind: Success, Text: "Saved"}}, tr.Drain())
	assert.Empty(t, tr.Drain())
}

func TestTray_DismissKeepsOtherNotices(t *testing.T) {
	var tr Tray
	tr.Info("hello")
	tr.Loading("wait")
	tr.Error("boom")
	tr.Dismiss()

	got := tr.Drain()
	assert.Equal(t, []Notice{
		{Kind: Info, Text: "hello"},
		{Kind: Error, Text: "boom"},
	}, got)
}

func TestTray_IgnoresEmptyText(t *testing.T) {
	var tr Tray
	tr.Error("")
	assert.Empty(t, tr.Pending())
}
