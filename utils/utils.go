package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ParseArguments converts command-line arguments into a map of flags and
// values. Supports --key=value, --key value and bare boolean --key.
func ParseArguments() map[string]string {
	return parseArgList(os.Args[1:])
}

func parseArgList(argv []string) map[string]string {
	args := make(map[string]string)

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		if len(arg) > 2 && arg[:2] == "--" {
			body := arg[2:]

			// --key=value form
			for j := 0; j < len(body); j++ {
				if body[j] == '=' {
					args[body[:j]] = body[j+1:]
					body = ""
					break
				}
			}
			if body == "" {
				continue
			}

			// --key value form, or bare boolean flag
			if i+1 < len(argv) && (len(argv[i+1]) < 2 || argv[i+1][:2] != "--") {
				args[body] = argv[i+1]
				i++
			} else {
				args[body] = "true"
			}
		}
	}

	return args
}

// ParsePort validates a TCP port argument
func ParsePort(portStr string) (int, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", portStr)
	}
	return port, nil
}

// GetDefaultCachePath returns the default path for the thumbnail cache
// database, next to the executable
func GetDefaultCachePath() string {
	exePath, err := os.Executable()
	if err != nil {
		// Fallback to current directory if executable path can't be determined
		return "thumbnails.db"
	}
	return filepath.Join(filepath.Dir(exePath), "thumbnails.db")
}

// PrintUsage outputs the command-line usage instructions
func PrintUsage() {
	fmt.Printf("Usage:\n")
	fmt.Printf("  %s --root=PATH [--port=N] [--cache=PATH] [--extensions=LIST] [--workers=N] [--debug] [--logfile=PATH]\n", os.Args[0])
	fmt.Printf("\nParameters:\n")
	fmt.Printf("  --root        : Folder to open when the UI loads\n")
	fmt.Printf("  --port        : HTTP port to listen on (default: 8590)\n")
	fmt.Printf("  --cache       : Thumbnail cache database path (default: %s, 'off' disables)\n", GetDefaultCachePath())
	fmt.Printf("  --extensions  : Comma-separated image extensions (default: jpg,jpeg,png)\n")
	fmt.Printf("  --workers     : Exiftool pool size (default: 3/4 of CPUs)\n")
	fmt.Printf("  --debug       : Enable debug logging\n")
	fmt.Printf("  --logfile     : Log file path (default: phototriage.log)\n")
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  %s --root=/home/me/Pictures --port=8590\n", os.Args[0])
	fmt.Printf("  %s --root=/mnt/card/DCIM --extensions=jpg,jpeg,png,tif --debug\n", os.Args[0])
}
