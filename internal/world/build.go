package world

import "fmt"

// Build converts a RawScenery into the runtime Graph in three ordered
// passes: direction marking, section/lane linking, junction wiring. Each
// pass is fatal-on-error: a malformed graph aborts before any invocation
// is attempted.
func Build(raw *RawScenery) (*Graph, error) {
	g := &Graph{Roads: map[RoadID]*Road{}, Junctions: map[string]*Junction{}}

	for i := range raw.Roads {
		if err := addRoad(g, &raw.Roads[i]); err != nil {
			return nil, err
		}
	}
	for i := range raw.Junctions {
		j := raw.Junctions[i]
		g.Junctions[j.ID] = &j
	}

	if err := markDirections(g); err != nil {
		return nil, err
	}
	if err := linkSectionsAndLanes(g, raw); err != nil {
		return nil, err
	}
	if err := wireJunctions(g); err != nil {
		return nil, err
	}
	return g, nil
}

func addRoad(g *Graph, raw *RawRoad) error {
	road := &Road{
		ID:             raw.ID,
		Predecessor:    raw.Predecessor,
		Successor:      raw.Successor,
		IsJunctionRoad: raw.IsJunctionRoad,
	}
	for _, rts := range raw.TrafficSigns {
		road.TrafficSigns = append(road.TrafficSigns, TrafficSign{S: rts.S, Type: rts.Type, LaneID: rts.LaneID})
	}
	for si, rs := range raw.Sections {
		section := &Section{
			Index:  si,
			Road:   road,
			Lanes:  map[LaneID]*Lane{},
			SStart: rs.SStart,
			SEnd:   rs.SEnd,
		}
		for _, rl := range rs.Lanes {
			section.Lanes[rl.ID] = &Lane{
				ID:      rl.ID,
				Section: section,
				Width:   rl.Width,
				Joints:  rl.Joints,
			}
		}
		road.Sections = append(road.Sections, section)
	}
	if _, exists := g.Roads[road.ID]; exists {
		return fmt.Errorf("world: duplicate road id %q", road.ID)
	}
	g.Roads[road.ID] = road
	return nil
}

// markDirections is pass 1. Each
// connected cluster of roads is walked from an arbitrary start road
// (declared in-direction true); predecessor/successor contact-point
// rules propagate the direction to neighbors. Junction roads are left in
// their natural direction (never flipped). A road linking to itself, or
// to a road id absent from the graph, is a configuration error.
func markDirections(g *Graph) error {
	visited := map[RoadID]bool{}

	var walk func(id RoadID, inDirection bool) error
	walk = func(id RoadID, inDirection bool) error {
		road, ok := g.Roads[id]
		if !ok {
			return fmt.Errorf("world: direction marking: road %q not found", id)
		}
		if visited[id] {
			return nil
		}
		visited[id] = true
		if road.IsJunctionRoad {
			inDirection = true
		}
		road.InDirection = inDirection

		for _, link := range []struct {
			l       *RoadLink
			ownSide ContactPoint
		}{
			{road.Predecessor, ContactStart},
			{road.Successor, ContactEnd},
		} {
			if link.l == nil {
				continue
			}
			if link.l.RoadID == road.ID {
				return fmt.Errorf("world: direction marking: road %q references itself", road.ID)
			}
			neighbor, ok := g.Roads[link.l.RoadID]
			if !ok {
				return fmt.Errorf("world: direction marking: road %q links to missing road %q", road.ID, link.l.RoadID)
			}
			if visited[neighbor.ID] {
				continue
			}
			// Same contact-point-to-contact-point pairing (e.g. this
			// road's End meets the neighbor's End) flips direction;
			// End-to-Start / Start-to-End pairing preserves it.
			neighborInDirection := inDirection
			if link.l.Contact == link.ownSide {
				neighborInDirection = !inDirection
			}
			if err := walk(neighbor.ID, neighborInDirection); err != nil {
				return err
			}
		}
		return nil
	}

	// Deterministic iteration order for reproducibility.
	ids := sortedRoadIDs(g)
	for _, id := range ids {
		if !visited[id] {
			if err := walk(id, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedRoadIDs(g *Graph) []RoadID {
	ids := make([]RoadID, 0, len(g.Roads))
	for id := range g.Roads {
		ids = append(ids, id)
	}
	// Simple insertion sort keeps this dependency-free; road counts per
	// scenery are small relative to per-tick hot paths.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

// linkSectionsAndLanes is pass 2.
// Intra-road section-to-section links are positional (section i's
// successor is section i+1); lane predecessor/successor pairs are
// established from the raw per-lane link ids. A raw lane naming a
// predecessor/successor id absent from the adjoining section is fatal:
// Build returns the error and no graph.
func linkSectionsAndLanes(g *Graph, raw *RawScenery) error {
	rawByID := map[RoadID]*RawRoad{}
	for i := range raw.Roads {
		rawByID[raw.Roads[i].ID] = &raw.Roads[i]
	}

	for _, road := range g.Roads {
		for i, section := range road.Sections {
			if i+1 < len(road.Sections) {
				section.Successor = road.Sections[i+1]
				road.Sections[i+1].Predecessor = section
			}
		}

		rawRoad := rawByID[road.ID]
		for si, section := range road.Sections {
			rawSection := rawRoad.Sections[si]
			for li, rawLane := range rawSection.Lanes {
				lane := section.Lanes[rawLane.ID]
				if rawLane.PredecessorLaneID != nil && section.Predecessor != nil {
					target, ok := section.Predecessor.Lanes[*rawLane.PredecessorLaneID]
					if !ok {
						return fmt.Errorf("world: road %q section %d lane %d: missing predecessor lane %d", road.ID, si, rawLane.ID, *rawLane.PredecessorLaneID)
					}
					lane.Predecessors = append(lane.Predecessors, target)
					target.Successors = append(target.Successors, lane)
				}
				if rawLane.SuccessorLaneID != nil && section.Successor != nil {
					target, ok := section.Successor.Lanes[*rawLane.SuccessorLaneID]
					if !ok {
						return fmt.Errorf("world: road %q section %d lane %d: missing successor lane %d", road.ID, si, rawLane.ID, *rawLane.SuccessorLaneID)
					}
					lane.Successors = append(lane.Successors, target)
					target.Predecessors = append(target.Predecessors, lane)
				}
				_ = li
			}
			// Wire same-section left/right neighbors: lane ids adjoin
			// numerically (…,-2,-1,1,2,…), skipping the non-existent 0.
			for id, lane := range section.Lanes {
				if rightID := adjacentLaneID(id, -1); rightID != id {
					if r, ok := section.Lanes[rightID]; ok {
						lane.Right = r
					}
				}
				if leftID := adjacentLaneID(id, 1); leftID != id {
					if l, ok := section.Lanes[leftID]; ok {
						lane.Left = l
					}
				}
			}
		}
	}
	return nil
}

// adjacentLaneID steps id by delta (-1 toward the right neighbor, +1
// toward the left), skipping over the non-existent lane id 0.
func adjacentLaneID(id LaneID, delta int) LaneID {
	next := int(id) + delta
	if next == 0 {
		next += delta
	}
	return LaneID(next)
}

// wireJunctions is pass 3: for each junction connection, the incoming
// -> connecting -> outgoing chain is stitched according to the explicit
// lane-id mapping, and the junction's priority relations are retained
// as given (they are consumed by right-of-way queries, not re-derived
// here).
func wireJunctions(g *Graph) error {
	for _, j := range g.Junctions {
		for _, conn := range j.Connections {
			incoming, ok := g.Roads[conn.IncomingRoad]
			if !ok {
				return fmt.Errorf("world: junction %q: missing incoming road %q", j.ID, conn.IncomingRoad)
			}
			connecting, ok := g.Roads[conn.ConnectingRoad]
			if !ok {
				return fmt.Errorf("world: junction %q: missing connecting road %q", j.ID, conn.ConnectingRoad)
			}
			outgoing, ok := g.Roads[conn.OutgoingRoad]
			if !ok {
				return fmt.Errorf("world: junction %q: missing outgoing road %q", j.ID, conn.OutgoingRoad)
			}
			if len(incoming.Sections) == 0 || len(connecting.Sections) == 0 || len(outgoing.Sections) == 0 {
				return fmt.Errorf("world: junction %q: connection roads must each have at least one section", j.ID)
			}

			inSection := lastSection(incoming)
			connFirst := connecting.Sections[0]
			connLast := lastSection(connecting)
			outSection := outgoing.Sections[0]

			for inLaneID, connLaneID := range conn.LaneLinks {
				inLane, ok := inSection.Lanes[inLaneID]
				if !ok {
					continue
				}
				connLane, ok := connFirst.Lanes[connLaneID]
				if !ok {
					return fmt.Errorf("world: junction %q: connecting road %q missing lane %d", j.ID, conn.ConnectingRoad, connLaneID)
				}
				inLane.Successors = append(inLane.Successors, connLane)
				connLane.Predecessors = append(connLane.Predecessors, inLane)

				// Connect the connecting road's outgoing-side lane of the
				// same numeric id to the outgoing road's first section.
				if connOutLane, ok := connLast.Lanes[connLaneID]; ok {
					if outLane, ok := outSection.Lanes[connLaneID]; ok {
						connOutLane.Successors = append(connOutLane.Successors, outLane)
						outLane.Predecessors = append(outLane.Predecessors, connOutLane)
					}
				}
			}
		}
	}
	return nil
}

func lastSection(r *Road) *Section {
	return r.Sections[len(r.Sections)-1]
}
