// cmd/tools/config-lint/main.go
//
// config-lint checks exported configuration JSON files before they are
// fed to plcctl config update-* commands, catching schema problems
// without a running backend.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/models"
	"github.com/sethgreenlaw/plc-autoconfig-sub000/internal/validation"
)

func main() {
	recordTypeCmd := flag.NewFlagSet("record-type", flag.ExitOnError)
	departmentCmd := flag.NewFlagSet("department", flag.ExitOnError)
	roleCmd := flag.NewFlagSet("role", flag.ExitOnError)

	rtFile := recordTypeCmd.String("file", "", "Path to a record type JSON file")
	depFile := departmentCmd.String("file", "", "Path to a department JSON file")
	roleFile := roleCmd.String("file", "", "Path to a user role JSON file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "record-type":
		recordTypeCmd.Parse(os.Args[2:])
		var rt models.RecordType
		load(*rtFile, &rt)
		check(validation.ValidateRecordType(&rt), "record type", rt.Name)

	case "department":
		departmentCmd.Parse(os.Args[2:])
		var dep models.Department
		load(*depFile, &dep)
		check(validation.ValidateDepartment(&dep), "department", dep.Name)

	case "role":
		roleCmd.Parse(os.Args[2:])
		var role models.UserRole
		load(*roleFile, &role)
		check(validation.ValidateUserRole(&role), "role", role.Name)

	case "help":
		help()

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		help()
		os.Exit(1)
	}
}

func load(path string, out interface{}) {
	if path == "" {
		fmt.Println("Error: -file is required.")
		os.Exit(1)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", path, err)
		os.Exit(1)
	}
	if err := json.Unmarshal(data, out); err != nil {
		fmt.Printf("Error parsing %s: %v\n", path, err)
		os.Exit(1)
	}
}

func check(err error, kind, name string) {
	if err != nil {
		fmt.Printf("Validation failed for %s %q: %v\n", kind, name, err)
		os.Exit(1)
	}
	fmt.Printf("%s %q is valid.\n", kind, name)
}

func help() {
	fmt.Println("Usage: config-lint <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  record-type -file FILE   Validate a record type JSON file")
	fmt.Println("  department -file FILE    Validate a department JSON file")
	fmt.Println("  role -file FILE          Validate a user role JSON file")
	fmt.Println("  help                     Show this help message")
}
