// Package hostmanager holds the diagnostic and control command lines run on
// the brick.
package hostmanager

// Diagnostic and control commands for an ev3dev brick.
const (
	OSRelease   = "cat /etc/os-release"
	FreeMemory  = "free"
	Processes   = "ps aux | sort -n -k 4"
	Shutdown    = "shutdown -h now"
	SystemInfo  = "ev3dev-sysinfo -m"
	JavaVersion = "java -version"
	ListHome    = "ls"
	KillJava    = "pkill java"
)

// RemoveFiles deletes paths without complaining about missing ones.
func RemoveFiles(paths ...string) string {
	cmd := "rm -f"
	for _, p := range paths {
		cmd += " " + p
	}
	return cmd
}
