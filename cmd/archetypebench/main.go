// Command archetypebench profiles the archetype store and scene transform
// updates under load: N entities spawned across a handful of archetypes, M
// query iterations per round, and a world-transform update of a 1000-sprite
// scene on every iteration. Grounded on edwinsyarief-lazyecs/profile/query/main.go's
// rounds/iters/entities profiling harness, using pkg/profile instead of
// raw pprof.StartCPUProfile for the CPU profile bracket.
//
// Usage:
//
//	go run ./cmd/archetypebench -entities 100000 -iters 10000 -rounds 50
package main

import (
	"flag"
	"fmt"

	"github.com/pdcamargo/atlas-engine/ecs"
	"github.com/pdcamargo/atlas-engine/render"
	"github.com/pkg/profile"
)

type Position struct{ X, Y float64 }
type Velocity struct{ DX, DY float64 }
type Health struct{ HP int }

func main() {
	entities := flag.Int("entities", 100000, "number of entities to spawn per round")
	iters := flag.Int("iters", 10000, "query iterations per round")
	rounds := flag.Int("rounds", 10, "number of rounds")
	mode := flag.String("profile", "cpu", "profile mode: cpu, mem, or none")
	flag.Parse()

	switch *mode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}

	run(*rounds, *iters, *entities)
}

func run(rounds, iters, numEntities int) {
	for round := 0; round < rounds; round++ {
		w := ecs.NewWorld()
		for i := 0; i < numEntities; i++ {
			e := w.CreateEntity()
			switch i % 3 {
			case 0:
				w.SetComponents(e, Position{X: float64(i)}, Velocity{DX: 1})
			case 1:
				w.SetComponents(e, Position{X: float64(i)}, Health{HP: 100})
			default:
				w.SetComponents(e, Position{X: float64(i)}, Velocity{DX: 1}, Health{HP: 100})
			}
		}

		root := render.NewNode(render.NodeContainer)
		for i := 0; i < 1000; i++ {
			spriteNode := render.NewNode(render.NodeSprite)
			spriteNode.Sprite = &render.Sprite{MaterialID: "bench", TextureID: uint64(i % 4)}
			root.AddChild(spriteNode)
		}

		var sum float64
		for iter := 0; iter < iters; iter++ {
			for _, pos := range ecs.Query1[Position](w) {
				sum += pos.X
			}
			render.UpdateWorldTransforms(root)
		}
		fmt.Printf("round %d: entities=%d sum=%v\n", round, numEntities, sum)
	}
}
