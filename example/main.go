// FILE: lixenwraith/propbind/example/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"

	"go.uber.org/zap"

	"github.com/lixenwraith/propbind"
)

// TLSConfig exposes its certificate path as a property.
type TLSConfig struct {
	certFile string
}

func (c *TLSConfig) CertFile() string { return c.certFile }
func (c *TLSConfig) SetCertFile(v string) { c.certFile = v }

// Server is the object graph the properties are bound to.
type Server struct {
	Host string
	Port int
	TLS  *TLSConfig

	motd string
}

// Limits carries process-wide settings. It has no instances; its static
// members live in limits.
type Limits struct{}

var limits struct {
	MaxConns int
	Ratio    float64
}

const initialProperties = `# Server settings
field Host = localhost
field Port = 8080
TLS.CertFile = /etc/app/server.pem
field motd = Welcome\nto the demo

# Process limits
static field Limits.MaxConns = 64
static field Limits.Ratio = 0.75
`

func main() {
	ctx := context.Background()

	// =========================================================================
	// PART 1: INITIAL SETUP
	// Write a property file for the program to read.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 1: Creating property file...")

	dir, err := os.MkdirTemp("", "propbind-demo")
	if err != nil {
		log.Fatalf("❌ Failed to create work directory: %v", err)
	}
	defer func() {
		log.Println("---")
		log.Println("🧹 Cleaning up...")
		os.RemoveAll(dir)
	}()

	path := filepath.Join(dir, "app.properties")
	if err := os.WriteFile(path, []byte(initialProperties), 0644); err != nil {
		log.Fatalf("❌ Failed to write %s: %v", path, err)
	}
	log.Printf("✅ Wrote %s.", path)

	// =========================================================================
	// PART 2: LOAD AND APPLY
	// Instance entries go to a Server; static entries go to Limits.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 2: Loading and applying properties...")

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if err := propbind.RegisterStatic(reflect.TypeFor[Limits](), &limits); err != nil {
		log.Fatalf("❌ Failed to register statics: %v", err)
	}

	m, err := propbind.NewBuilder().
		WithFile(path).
		WithEditable(true).
		WithLogger(logger).
		Build(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to load properties: %v", err)
	}

	server := &Server{TLS: &TLSConfig{}}
	instance, static := splitEntries(m)
	for _, e := range instance {
		if err := e.ApplyToInstance(server); err != nil {
			log.Fatalf("❌ Failed to apply %s: %v", e.Path, err)
		}
	}
	for _, e := range static {
		if err := e.ApplyToType(reflect.TypeFor[Server]()); err != nil {
			log.Fatalf("❌ Failed to apply %s: %v", e.Path, err)
		}
	}
	printState(server, "Initial State")

	// =========================================================================
	// PART 3: EDIT AND SAVE
	// Change values in memory, persist them, and reload.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 3: Editing properties...")

	if err := propbind.SetValue(m, "Port", 9090); err != nil {
		log.Fatalf("❌ SetValue failed: %v", err)
	}
	if err := propbind.SetValue(m, "Port", "nine"); err != nil {
		log.Printf("✅ Kind change rejected as expected: %v", err)
	}
	if err := m.Save(ctx); err != nil {
		log.Fatalf("❌ Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("❌ Failed to read back %s: %v", path, err)
	}
	log.Printf("✅ Saved file (comments kept):\n%s", data)

	if err := m.Reload(ctx); err != nil {
		log.Fatalf("❌ Reload failed: %v", err)
	}
	port, err := propbind.GetValue[int](m, "Port")
	if err != nil {
		log.Fatalf("❌ GetValue failed: %v", err)
	}
	log.Printf("✅ Port after reload: %d", port)

	// =========================================================================
	// PART 4: DOCUMENT STORE
	// Copy the bindings into an embedded SQLite collection.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 4: Copying to an SQLite collection...")

	store := propbind.NewSQLiteStore(filepath.Join(dir, "props.db"), "demo")
	docs := propbind.NewEditableDocumentProviderWithOptions(store, propbind.DocumentOptions{Logger: logger})
	entries := make([]*propbind.Entry, 0, len(m.Keys()))
	for _, e := range m.Entries() {
		entries = append(entries, &e)
	}
	if err := docs.Save(ctx, entries); err != nil {
		log.Fatalf("❌ Failed to save documents: %v", err)
	}

	ratio, err := propbind.ValueFrom[float64](ctx, docs, "Limits.Ratio")
	if err != nil {
		log.Fatalf("❌ Failed to read documents: %v", err)
	}
	log.Printf("✅ Limits.Ratio from SQLite: %g", ratio)
}

// splitEntries separates instance bindings from static ones.
func splitEntries(m *propbind.Manager) (instance, static []propbind.Entry) {
	for _, e := range m.Entries() {
		switch {
		case e.Passthrough:
		case e.IsStatic:
			static = append(static, e)
		default:
			instance = append(instance, e)
		}
	}
	return instance, static
}

func printState(s *Server, title string) {
	fmt.Printf("\n--- %s ---\n", title)
	fmt.Printf("  Server:  %s:%d\n", s.Host, s.Port)
	fmt.Printf("  TLS:     %s\n", s.TLS.CertFile())
	fmt.Printf("  MOTD:    %q\n", s.motd)
	fmt.Printf("  Limits:  max_conns=%d ratio=%g\n", limits.MaxConns, limits.Ratio)
	fmt.Println("---------------------------------")
}
