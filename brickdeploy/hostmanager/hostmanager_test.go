package hostmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveFiles(t *testing.T) {
	assert.Equal(t,
		"rm -f /home/robot/java/programs/demo-1.0.jar /home/robot/demo-1.0.sh /home/robot/java/splashes/demo-1.0.txt",
		RemoveFiles("/home/robot/java/programs/demo-1.0.jar", "/home/robot/demo-1.0.sh", "/home/robot/java/splashes/demo-1.0.txt"))
	assert.Equal(t, "rm -f", RemoveFiles())
}
