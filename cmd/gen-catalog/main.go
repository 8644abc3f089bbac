// Command gen-catalog writes the builtin machines as Loam documents, so they
// can be edited and served back with `turingviz --dir`.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/loam"
	"github.com/aretw0/turingviz/internal/dto"
	loamAdapter "github.com/aretw0/turingviz/pkg/adapters/loam"
	"github.com/aretw0/turingviz/pkg/adapters/memory"
)

func main() {
	targetDir := "examples/catalog"
	if len(os.Args) > 1 {
		targetDir = os.Args[1]
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		fail(err)
	}
	fmt.Printf("Generating catalog in: %s\n", targetDir)

	// No versioning: plain file generation.
	repo, err := loam.Init(targetDir, loam.WithVersioning(false))
	if err != nil {
		fail(err)
	}
	loader := loamAdapter.New(loam.NewTypedRepository[dto.MachineMetadata](repo))

	ctx := context.Background()
	for _, def := range memory.Builtin() {
		if err := loader.Save(ctx, def); err != nil {
			fail(err)
		}
		fmt.Println("-", def.ID)
	}
	fmt.Println("Done. Serve it with: turingviz --dir", targetDir, "list")
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
