package dataset

import (
	"fmt"
	"os"
	"strings"
)

// Database describes a SQL Server database instance hosting datasets.
type Database struct {
	Name     string
	Hostname string
	// Port of 0 omits the port from connection addresses.
	Port int
	// DataSchemaNames lists owned data schemas, typically the ones needing
	// periodic compression.
	DataSchemaNames []string
}

// Host returns the instance address, with port when configured.
func (d Database) Host() string {
	if d.Port == 0 {
		return d.Hostname
	}
	return fmt.Sprintf("%s,%d", d.Hostname, d.Port)
}

// HasDataSchema reports whether the named schema is one of the database's
// data schemas (case-insensitive).
func (d Database) HasDataSchema(name string) bool {
	for _, schema := range d.DataSchemaNames {
		if strings.EqualFold(schema, name) {
			return true
		}
	}
	return false
}

// ODBCOptions adjusts ODBC connection string construction.
type ODBCOptions struct {
	// Username and Password form a credential; when Username is empty the
	// string requests a trusted connection instead.
	Username string
	Password string
	// ApplicationName labels the connection for the server.
	ApplicationName string
	// DriverString overrides the default driver clause.
	DriverString string
	// ReadOnly sets the application intent to a read-only workload.
	ReadOnly bool
}

// DefaultODBCDriver is the driver clause used when none is configured.
const DefaultODBCDriver = "{ODBC Driver 17 for SQL Server}"

// ODBCString renders the ODBC connection string for the database. The
// workstation ID is the local hostname.
func (d Database) ODBCString(opts ODBCOptions) string {
	driver := opts.DriverString
	if driver == "" {
		driver = DefaultODBCDriver
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Driver=%s;Server=%s;", driver, d.Host())
	if d.Name != "" {
		fmt.Fprintf(&builder, "Database=%s;", d.Name)
	}
	if opts.Username != "" {
		fmt.Fprintf(&builder, "UID=%s;", opts.Username)
		if opts.Password != "" {
			fmt.Fprintf(&builder, "PWD=%s;", opts.Password)
		}
	} else {
		builder.WriteString("Trusted_Connection=yes;")
	}
	if opts.ApplicationName != "" {
		fmt.Fprintf(&builder, "APP=%s;", opts.ApplicationName)
	}
	if opts.ReadOnly {
		builder.WriteString("ApplicationIntent=ReadOnly;")
	} else {
		builder.WriteString("ApplicationIntent=ReadWrite;")
	}
	hostname, _ := os.Hostname()
	fmt.Fprintf(&builder, "WSID=%s;", hostname)
	return builder.String()
}
