// Package yard models the terminal the crane works in: a ship hold with a
// few overflow rows above it, a buffer grid beside the ship, the truck bay
// and the crane's rest position.
//
// [Layout] prices crane travel. Within a grid travel is Manhattan distance,
// optionally climbing over stacks; between locations it passes through each
// grid's gateway cell and pays a fixed transfer cost.
//
// [State] is a snapshot used by the planners. It keeps a per-column height
// map in step with every mutation so that [State.DropAt] is constant time,
// and offers the relocation primitives both goals are built from:
// [State.Corridor], [State.Search] and [State.SearchAndRelocate]. States are
// cloned before mutation; every cost is charged through [State.Record], so
// the cost of a state always equals the sum of its moves.
//
// [Replay] re-applies a finished move list to its manifest and is used to
// verify plans.
package yard
