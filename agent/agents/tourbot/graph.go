package tourbot

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/Montebello-TourBot/agent/contract"
	tourbotnode "github.com/tanpawarit/Montebello-TourBot/agent/nodes"
)

func (b *Tourbot) compileHandleTurnGraph(
	ctx context.Context,
) (compose.Runnable[tourbotnode.GraphInput, tourbotnode.GraphOutput], error) {
	graph := compose.NewGraph[tourbotnode.GraphInput, tourbotnode.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in tourbotnode.GraphInput) (*tourbotnode.GraphState, error) {
			return tourbotnode.ValidateRequest(in, b.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_thread",
		compose.InvokableLambda(func(ctx context.Context, in *tourbotnode.GraphState) (*tourbotnode.GraphState, error) {
			return tourbotnode.LoadOrCreateThread(ctx, in, b.threads)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_thread: %w", err)
	}

	if err := graph.AddLambdaNode("build_context",
		compose.InvokableLambda(func(ctx context.Context, in *tourbotnode.GraphState) (*tourbotnode.GraphState, error) {
			return tourbotnode.BuildContext(ctx, in, b.catalog)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node build_context: %w", err)
	}

	if err := graph.AddLambdaNode("invoke_model",
		compose.InvokableLambda(func(ctx context.Context, in *tourbotnode.GraphState) (*tourbotnode.GraphState, error) {
			return tourbotnode.InvokeModel(ctx, in, b.model)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node invoke_model: %w", err)
	}

	if err := graph.AddLambdaNode("execute_registration",
		compose.InvokableLambda(func(ctx context.Context, in *tourbotnode.GraphState) (*tourbotnode.GraphState, error) {
			return tourbotnode.ExecuteRegistration(ctx, in, b.executor)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_registration: %w", err)
	}

	if err := graph.AddLambdaNode("compose_reply",
		compose.InvokableLambda(func(ctx context.Context, in *tourbotnode.GraphState) (*tourbotnode.GraphState, error) {
			return tourbotnode.ComposeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node compose_reply: %w", err)
	}

	if err := graph.AddLambdaNode("save_thread",
		compose.InvokableLambda(func(ctx context.Context, in *tourbotnode.GraphState) (*tourbotnode.GraphState, error) {
			return tourbotnode.SaveThread(ctx, in, b.threads, b.extractor)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node save_thread: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *tourbotnode.GraphState) (tourbotnode.GraphOutput, error) {
			return tourbotnode.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	// Two terminal outcomes per turn: a tool call books a seat, anything
	// else is a plain reply.
	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *tourbotnode.GraphState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
			}
			if in.Outcome.ToolCall != nil {
				return "execute_registration", nil
			}
			return "compose_reply", nil
		},
		map[string]bool{
			"execute_registration": true,
			"compose_reply":        true,
		},
	)

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_thread"},
		{"load_thread", "build_context"},
		{"build_context", "invoke_model"},
		{"execute_registration", "save_thread"},
		{"compose_reply", "save_thread"},
		{"save_thread", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	if err := graph.AddBranch("invoke_model", branch); err != nil {
		return nil, fmt.Errorf("add outcome branch: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("tourbot.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile tourbot graph: %w", err)
	}
	return runner, nil
}
