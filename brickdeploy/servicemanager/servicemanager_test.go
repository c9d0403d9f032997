package servicemanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Ntp", Capitalize("ntp"))
	assert.Equal(t, "Brickman", Capitalize("brickman"))
	assert.Equal(t, "", Capitalize(""))
	assert.Equal(t, "Ölhaus", Capitalize("ölhaus"))
}

func TestNtpShortcuts(t *testing.T) {
	assert.Equal(t, "stopNtp", ActionName(Stop, "ntp"))
	assert.Equal(t, "restartNtp", ActionName(Restart, "ntp"))
	assert.Equal(t, "systemctl stop ntp", Command(Stop, "ntp"))
	assert.Equal(t, "systemctl restart ntp", Command(Restart, "ntp"))
	assert.Equal(t, "Stop the ntp service.", Description(Stop, "ntp"))
	assert.Equal(t, "Restart the ntp service.", Description(Restart, "ntp"))
}

func TestDefaultServices(t *testing.T) {
	assert.Equal(t, []string{"bluetooth", "ntp", "nmbd", "brickman"}, DefaultServices)
	assert.Equal(t, []Verb{Stop, Restart}, Verbs)
}
