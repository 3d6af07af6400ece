// Package upstream adapts the game-client collaborator: the Surface
// interface is the capability set the orchestration core calls into,
// WSClient implements it over a JSON websocket protocol, and Fake is a
// scriptable in-memory double for tests.
package upstream

import (
	"context"

	"minebridge/internal/protocol"
	"minebridge/internal/recipes"
)

// Surface is the semantic operation set of the game client. Every
// blocking operation takes a context; cancelling it must cancel the
// underlying operation, not merely abandon it.
type Surface interface {
	// Connected reports whether the underlying link is live.
	Connected() bool
	// Close tears the link down. Notifications() is closed afterwards.
	Close() error
	// Notifications delivers push events (damage, death, effects,
	// chat, broken equipment, vitals). Closed when the link ends.
	Notifications() <-chan protocol.Notification

	// State queries.
	Vitals(ctx context.Context) (protocol.Vitals, error)
	Position(ctx context.Context) (protocol.Vec3, error)
	Inventory(ctx context.Context) (map[string]int, error)

	// World queries.
	NearestBlock(ctx context.Context, names []string, radius float64) (*protocol.BlockRef, error)
	NearestEntity(ctx context.Context, kinds []string, radius float64) (*protocol.EntityRef, error)
	Projectiles(ctx context.Context, radius float64) ([]protocol.EntityRef, error)
	EntityByID(ctx context.Context, id int) (*protocol.EntityRef, error)
	IsNight(ctx context.Context) (bool, error)

	// Movement and block work. Long-running; completion is the return.
	Navigate(ctx context.Context, goal protocol.Vec3, tolerance float64) error
	Dig(ctx context.Context, pos protocol.Vec3) error
	PlaceBlock(ctx context.Context, item string, near protocol.Vec3) (protocol.Vec3, error)

	// Equipment and hands.
	Equip(ctx context.Context, item, slot string) error
	Unequip(ctx context.Context, slot string) error
	ActivateItem(ctx context.Context) error
	DeactivateItem(ctx context.Context) error
	Consume(ctx context.Context) error

	// Combat.
	Attack(ctx context.Context, entityID int) error
	StopAttack(ctx context.Context) error

	// Crafting. One attempt produces one craft of the recipe.
	RecipesFor(ctx context.Context, item string) ([]recipes.Recipe, error)
	Craft(ctx context.Context, r recipes.Recipe) error

	// Containers and beds.
	OpenContainer(ctx context.Context, pos protocol.Vec3) (Container, error)
	SleepInBed(ctx context.Context, pos protocol.Vec3) error
	Wake(ctx context.Context) error
}

// Container is an open chest/furnace-like window. Close releases the
// window; all other calls fail after Close.
type Container interface {
	Deposit(ctx context.Context, item string, count int) (int, error)
	Withdraw(ctx context.Context, item string, count int) (int, error)
	PutInput(ctx context.Context, item string, count int) (int, error)
	PutFuel(ctx context.Context, item string, count int) (int, error)
	TakeOutput(ctx context.Context) (string, int, error)
	State(ctx context.Context) (protocol.FurnaceState, error)
	Close() error
}

// OpError is a structured failure from the game client.
type OpError struct {
	Op      string
	Code    string
	Message string
}

func (e *OpError) Error() string {
	if e.Message == "" {
		return e.Op + ": " + e.Code
	}
	return e.Op + ": " + e.Code + ": " + e.Message
}
