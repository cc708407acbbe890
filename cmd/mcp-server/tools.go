package main

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/patrickwarner/interstitial/internal/interstitial"
)

// UnitInput names the ad unit a tool acts on.
type UnitInput struct {
	UnitID string `json:"unit_id"`
}

// UnitState is a coordinator snapshot with the state spelled out.
type UnitState struct {
	UnitID   string `json:"unit_id"`
	State    string `json:"state"`
	HandleID string `json:"handle_id,omitempty"`
}

func unitState(s interstitial.Snapshot) UnitState {
	return UnitState{UnitID: s.UnitID, State: s.State.String(), HandleID: s.HandleID}
}

type PreloadOutput struct {
	Unit UnitState `json:"unit"`
}

type ShowOutput struct {
	Outcome string    `json:"outcome"`
	Unit    UnitState `json:"unit"`
}

type StateOutput struct {
	Units []UnitState `json:"units"`
}

// InterstitialTools exposes the coordinators as MCP tools.
type InterstitialTools struct {
	coordinators *interstitial.Registry
	loadTimeout  time.Duration
	logger       *zap.Logger
}

func (s *InterstitialTools) lookup(unitID string) (*interstitial.Coordinator, error) {
	c, ok := s.coordinators.Lookup(unitID)
	if !ok {
		return nil, fmt.Errorf("unknown ad unit %q (configured: %v)", unitID, s.coordinators.Units())
	}
	return c, nil
}

// Preload implements the preload_interstitial tool.
func (s *InterstitialTools) Preload(ctx context.Context, req *mcp.CallToolRequest, input UnitInput) (*mcp.CallToolResult, PreloadOutput, error) {
	c, err := s.lookup(input.UnitID)
	if err != nil {
		return nil, PreloadOutput{}, err
	}
	// The load itself keeps running if this deadline passes.
	ctx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()
	c.Preload(ctx)

	snap := c.Snapshot()
	s.logger.Info("preload via mcp", zap.String("unit_id", snap.UnitID), zap.Stringer("state", snap.State))
	return nil, PreloadOutput{Unit: unitState(snap)}, nil
}

// Show implements the show_interstitial tool.
func (s *InterstitialTools) Show(ctx context.Context, req *mcp.CallToolRequest, input UnitInput) (*mcp.CallToolResult, ShowOutput, error) {
	c, err := s.lookup(input.UnitID)
	if err != nil {
		return nil, ShowOutput{}, err
	}
	outcome := c.Show(ctx)
	s.logger.Info("show via mcp", zap.String("unit_id", c.UnitID()), zap.Stringer("outcome", outcome))
	return nil, ShowOutput{Outcome: outcome.String(), Unit: unitState(c.Snapshot())}, nil
}

// State implements the interstitial_state tool. An empty unit_id lists all units.
func (s *InterstitialTools) State(ctx context.Context, req *mcp.CallToolRequest, input UnitInput) (*mcp.CallToolResult, StateOutput, error) {
	if input.UnitID != "" {
		c, err := s.lookup(input.UnitID)
		if err != nil {
			return nil, StateOutput{}, err
		}
		return nil, StateOutput{Units: []UnitState{unitState(c.Snapshot())}}, nil
	}
	out := StateOutput{Units: []UnitState{}}
	for _, unit := range s.coordinators.Units() {
		out.Units = append(out.Units, unitState(s.coordinators.Get(unit).Snapshot()))
	}
	return nil, out, nil
}

var unitSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"unit_id": map[string]interface{}{
			"type":        "string",
			"description": "Ad unit ID as configured in AD_UNIT_IDS",
		},
	},
	"required": []string{"unit_id"},
}

// register adds the interstitial tools to server.
func (s *InterstitialTools) register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "preload_interstitial",
		Description: "Load the next interstitial creative for an ad unit if none is loaded",
		InputSchema: unitSchema,
	}, s.Preload)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "show_interstitial",
		Description: "Present the loaded interstitial for an ad unit, or schedule a preload when nothing is ready",
		InputSchema: unitSchema,
	}, s.Show)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "interstitial_state",
		Description: "Report the lifecycle state of one ad unit, or all units when unit_id is omitted",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"unit_id": map[string]interface{}{
					"type":        "string",
					"description": "Ad unit ID (optional)",
				},
			},
		},
	}, s.State)
}
