package upstream

import (
	"context"
	"sync"

	"minebridge/internal/protocol"
	"minebridge/internal/recipes"
)

// Fake is an in-memory Surface for tests: world state lives in plain
// fields, every mutating call is recorded, and per-op hooks override
// the default behavior when a test needs failure injection.
type Fake struct {
	mu     sync.Mutex
	closed bool
	notify chan protocol.Notification

	Inv      map[string]int
	Pos      protocol.Vec3
	Vit      protocol.Vitals
	Blocks   []protocol.BlockRef
	Entities []protocol.EntityRef
	InFlight []protocol.EntityRef // projectiles
	Night    bool
	Recipes  map[string][]recipes.Recipe

	Containers map[protocol.Vec3]*FakeContainer

	Held string

	// Call records for assertions.
	EquipCalls      []string
	UnequipCalls    []string
	ActivateCount   int
	DeactivateCount int
	ConsumeCount    int
	AttackCalls     []int
	StopAttackCount int
	NavigateCalls   []protocol.Vec3
	DigCalls        []protocol.Vec3
	PlaceCalls      []string
	SleepCalls      int
	WakeCalls       int

	// Hooks. Nil means the default behavior.
	NavigateFn    func(ctx context.Context, goal protocol.Vec3, tolerance float64) error
	DigFn         func(ctx context.Context, pos protocol.Vec3) error
	ConsumeFn     func(ctx context.Context) error
	CraftFn       func(ctx context.Context, r recipes.Recipe) error
	EquipFn       func(ctx context.Context, item, slot string) error
	ProjectilesFn func(ctx context.Context, radius float64) ([]protocol.EntityRef, error)
	OpenFn        func(ctx context.Context, pos protocol.Vec3) (Container, error)
	SleepFn       func(ctx context.Context, pos protocol.Vec3) error
}

func NewFake() *Fake {
	return &Fake{
		notify:     make(chan protocol.Notification, 64),
		Inv:        map[string]int{},
		Vit:        protocol.Vitals{Health: 20, Food: 20},
		Recipes:    map[string][]recipes.Recipe{},
		Containers: map[protocol.Vec3]*FakeContainer{},
	}
}

func (f *Fake) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.notify)
	}
	return nil
}

func (f *Fake) Notifications() <-chan protocol.Notification { return f.notify }

// Push injects a notification as if the game client sent it.
func (f *Fake) Push(n protocol.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.notify <- n
}

// CallLog is a locked snapshot of the fake's call records, for
// assertions that race with behavior goroutines.
type CallLog struct {
	Equips        []string
	Activations   int
	Deactivations int
	Consumes      int
	Attacks       []int
	StopAttacks   int
}

func (f *Fake) Calls() CallLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return CallLog{
		Equips:        append([]string(nil), f.EquipCalls...),
		Activations:   f.ActivateCount,
		Deactivations: f.DeactivateCount,
		Consumes:      f.ConsumeCount,
		Attacks:       append([]int(nil), f.AttackCalls...),
		StopAttacks:   f.StopAttackCount,
	}
}

func (f *Fake) Vitals(ctx context.Context) (protocol.Vitals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Vit, nil
}

func (f *Fake) SetVitals(v protocol.Vitals) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Vit = v
}

func (f *Fake) Position(ctx context.Context) (protocol.Vec3, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Pos, nil
}

func (f *Fake) Inventory(ctx context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.Inv))
	for k, v := range f.Inv {
		if v > 0 {
			out[k] = v
		}
	}
	return out, nil
}

func (f *Fake) NearestBlock(ctx context.Context, names []string, radius float64) (*protocol.BlockRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *protocol.BlockRef
	var bestDist float64
	for i := range f.Blocks {
		b := f.Blocks[i]
		for _, n := range names {
			if b.Name != n {
				continue
			}
			d := f.Pos.DistanceTo(b.Pos)
			if d > radius {
				continue
			}
			if best == nil || d < bestDist {
				cp := b
				best = &cp
				bestDist = d
			}
		}
	}
	return best, nil
}

func (f *Fake) NearestEntity(ctx context.Context, kinds []string, radius float64) (*protocol.EntityRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Entities {
		e := f.Entities[i]
		for _, k := range kinds {
			if e.Kind == k && f.Pos.DistanceTo(e.Pos) <= radius {
				cp := e
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (f *Fake) Projectiles(ctx context.Context, radius float64) ([]protocol.EntityRef, error) {
	if f.ProjectilesFn != nil {
		return f.ProjectilesFn(ctx, radius)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []protocol.EntityRef
	for _, e := range f.InFlight {
		if f.Pos.DistanceTo(e.Pos) <= radius {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *Fake) SetProjectiles(ps []protocol.EntityRef) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.InFlight = ps
}

func (f *Fake) EntityByID(ctx context.Context, id int) (*protocol.EntityRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Entities {
		if f.Entities[i].ID == id {
			cp := f.Entities[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *Fake) IsNight(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Night, nil
}

func (f *Fake) Navigate(ctx context.Context, goal protocol.Vec3, tolerance float64) error {
	if f.NavigateFn != nil {
		return f.NavigateFn(ctx, goal, tolerance)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.NavigateCalls = append(f.NavigateCalls, goal)
	f.Pos = goal
	return nil
}

func (f *Fake) Dig(ctx context.Context, pos protocol.Vec3) error {
	if f.DigFn != nil {
		return f.DigFn(ctx, pos)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DigCalls = append(f.DigCalls, pos)
	for i, b := range f.Blocks {
		if b.Pos == pos {
			f.Inv[b.Name]++
			f.Blocks = append(f.Blocks[:i], f.Blocks[i+1:]...)
			return nil
		}
	}
	return &OpError{Op: "dig", Code: protocol.CodeTargetLost, Message: "no block at position"}
}

func (f *Fake) PlaceBlock(ctx context.Context, item string, near protocol.Vec3) (protocol.Vec3, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Inv[item] <= 0 {
		return protocol.Vec3{}, &OpError{Op: "place_block", Code: protocol.CodeNoResource, Message: item}
	}
	f.Inv[item]--
	f.PlaceCalls = append(f.PlaceCalls, item)
	pos := protocol.Vec3{X: near.X + 1, Y: near.Y, Z: near.Z}
	f.Blocks = append(f.Blocks, protocol.BlockRef{Name: item, Pos: pos})
	return pos, nil
}

func (f *Fake) Equip(ctx context.Context, item, slot string) error {
	if f.EquipFn != nil {
		return f.EquipFn(ctx, item, slot)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Inv[item] <= 0 {
		return &OpError{Op: "equip", Code: protocol.CodeNoResource, Message: item}
	}
	f.EquipCalls = append(f.EquipCalls, item+":"+slot)
	if slot == "hand" || slot == "off-hand" {
		f.Held = item
	}
	return nil
}

func (f *Fake) Unequip(ctx context.Context, slot string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UnequipCalls = append(f.UnequipCalls, slot)
	return nil
}

func (f *Fake) ActivateItem(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ActivateCount++
	return nil
}

func (f *Fake) DeactivateItem(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeactivateCount++
	return nil
}

func (f *Fake) Consume(ctx context.Context) error {
	if f.ConsumeFn != nil {
		return f.ConsumeFn(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Held == "" || f.Inv[f.Held] <= 0 {
		return &OpError{Op: "consume", Code: protocol.CodeNoResource, Message: "nothing edible held"}
	}
	f.Inv[f.Held]--
	f.ConsumeCount++
	f.Vit.Food += 4
	if f.Vit.Food > 20 {
		f.Vit.Food = 20
	}
	return nil
}

func (f *Fake) Attack(ctx context.Context, entityID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AttackCalls = append(f.AttackCalls, entityID)
	return nil
}

func (f *Fake) StopAttack(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.StopAttackCount++
	return nil
}

func (f *Fake) RecipesFor(ctx context.Context, item string) ([]recipes.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Recipes[item], nil
}

func (f *Fake) Craft(ctx context.Context, r recipes.Recipe) error {
	if f.CraftFn != nil {
		return f.CraftFn(ctx, r)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	need := r.PerUnit()
	for item, n := range need {
		if f.Inv[item] < n {
			return &OpError{Op: "craft", Code: protocol.CodeNoResource, Message: item}
		}
	}
	for item, n := range need {
		f.Inv[item] -= n
	}
	count := r.OutputCount
	if count <= 0 {
		count = 1
	}
	f.Inv[r.Output] += count
	return nil
}

func (f *Fake) OpenContainer(ctx context.Context, pos protocol.Vec3) (Container, error) {
	if f.OpenFn != nil {
		return f.OpenFn(ctx, pos)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.Containers[pos]; ok {
		c.owner = f
		return c, nil
	}
	return nil, &OpError{Op: "open_container", Code: protocol.CodeTargetLost, Message: "no container"}
}

func (f *Fake) SleepInBed(ctx context.Context, pos protocol.Vec3) error {
	if f.SleepFn != nil {
		return f.SleepFn(ctx, pos)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SleepCalls++
	return nil
}

func (f *Fake) Wake(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.WakeCalls++
	return nil
}

// FakeContainer simulates a furnace-like window. Each State call
// advances smelting by SmeltPerPoll items, consuming one fuel per item
// when Fueled is set.
type FakeContainer struct {
	mu    sync.Mutex
	owner *Fake

	Fueled       bool // consumes fuel when true
	SmeltPerPoll int

	St     protocol.FurnaceState
	Closed bool

	StateCalls int
}

func (c *FakeContainer) Deposit(ctx context.Context, item string, count int) (int, error) {
	return count, nil
}

func (c *FakeContainer) Withdraw(ctx context.Context, item string, count int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Furnace-like windows hand back their input slot; plain chests
	// hand out whatever is asked for.
	if item == c.St.InputItem && c.St.InputCount > 0 {
		if count > c.St.InputCount {
			count = c.St.InputCount
		}
		c.St.InputCount -= count
	}
	if c.owner != nil {
		c.owner.mu.Lock()
		c.owner.Inv[item] += count
		c.owner.mu.Unlock()
	}
	return count, nil
}

func (c *FakeContainer) PutInput(ctx context.Context, item string, count int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	moved := c.takeFromOwner(item, count)
	c.St.InputItem = item
	c.St.InputCount += moved
	return moved, nil
}

func (c *FakeContainer) PutFuel(ctx context.Context, item string, count int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	moved := c.takeFromOwner(item, count)
	c.St.FuelItem = item
	c.St.FuelCount += moved
	return moved, nil
}

func (c *FakeContainer) takeFromOwner(item string, count int) int {
	if c.owner == nil {
		return count
	}
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()
	have := c.owner.Inv[item]
	if have < count {
		count = have
	}
	c.owner.Inv[item] -= count
	return count
}

func (c *FakeContainer) TakeOutput(ctx context.Context) (string, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, n := c.St.OutputItem, c.St.OutputCount
	c.St.OutputItem = ""
	c.St.OutputCount = 0
	if n > 0 && c.owner != nil {
		c.owner.mu.Lock()
		c.owner.Inv[item] += n
		c.owner.mu.Unlock()
	}
	return item, n, nil
}

func (c *FakeContainer) State(ctx context.Context) (protocol.FurnaceState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.StateCalls++
	for i := 0; i < c.SmeltPerPoll && c.St.InputCount > 0; i++ {
		if c.Fueled {
			if c.St.FuelCount <= 0 {
				break
			}
			c.St.FuelCount--
		}
		c.St.InputCount--
		c.St.OutputItem = smeltedName(c.St.InputItem)
		c.St.OutputCount++
	}
	return c.St, nil
}

func (c *FakeContainer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Closed = true
	return nil
}

func smeltedName(input string) string {
	switch input {
	case "raw_iron", "iron_ore", "deepslate_iron_ore":
		return "iron_ingot"
	case "raw_gold", "gold_ore":
		return "gold_ingot"
	case "raw_copper", "copper_ore":
		return "copper_ingot"
	case "beef":
		return "cooked_beef"
	case "porkchop":
		return "cooked_porkchop"
	case "chicken":
		return "cooked_chicken"
	case "cod":
		return "cooked_cod"
	case "salmon":
		return "cooked_salmon"
	case "potato":
		return "baked_potato"
	case "kelp":
		return "dried_kelp"
	default:
		return "smelted_" + input
	}
}
