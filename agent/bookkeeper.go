package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	zenassist "github.com/budgera/zenassist"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user is here primarily to understand his budget: where the money went, what is planned,
			and whether the current billing period balances. Amounts come back as exact decimals,
			quote them as they are.

			Devise a plan of questions to ask each expert and come up with the best response to the
			user's request, formatted as markdown.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewBookkeeper builds the expert that holds the mirrored ledger: every
// registered operation becomes a function it can call.
func NewBookkeeper(svc *zenassist.Service) *Expert {
	lib := operationFuncs(svc)
	return &Expert{
		Name: "Bookkeeper",
		Description: `This is the Bookkeeper. He holds the user's mirrored ledger: accounts,
		transactions, categories, budgets and scheduled payments. He can read everything,
		run the detailed budget analysis, and create or modify entries on request.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are a bookkeeper in charge of the user's personal-finance ledger.
				You know how to use the Tools to read accounts, transactions, categories,
				budgets and reminders, and to run the detailed budget analysis.

				Dates are yyyy-MM-dd and months yyyy-MM. When the user speaks of "this month"
				prefer the billing period the analysis uses by default over the calendar month.
				Before writing anything (create, update, delete) restate what you are about to
				do and only proceed when the user already asked for exactly that.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// operationFuncs converts the operation registry into callable functions.
func operationFuncs(svc *zenassist.Service) []Function {
	ops := zenassist.Operations()
	out := make([]Function, 0, len(ops))
	for _, op := range ops {
		out = append(out, &Func{
			Decl: declarationOf(op),
			Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				fresp := &genai.FunctionResponse{ID: id, Name: op.Name, Response: map[string]any{}}
				result, err := svc.Call(ctx, op.Name, args)
				if err != nil {
					fresp.Response["error"] = err.Error()
					return fresp
				}
				payload, err := json.Marshal(result)
				if err != nil {
					fresp.Response["error"] = fmt.Sprintf("cannot encode result: %v", err)
					return fresp
				}
				fresp.Response["output"] = string(payload)
				return fresp
			},
		})
	}
	return out
}

func declarationOf(op zenassist.Op) *genai.FunctionDeclaration {
	decl := &genai.FunctionDeclaration{
		Name:        op.Name,
		Description: op.Description,
		Response: &genai.Schema{
			Type:        genai.TypeString,
			Description: "The operation result as a JSON document.",
		},
	}
	if len(op.Params) == 0 {
		return decl
	}
	schema := &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}}
	for _, p := range op.Params {
		schema.Properties[p.Name] = paramSchema(p)
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	decl.Parameters = schema
	return decl
}

func paramSchema(p zenassist.Param) *genai.Schema {
	if elem, ok := strings.CutSuffix(p.Type, "[]"); ok {
		return &genai.Schema{
			Type:        genai.TypeArray,
			Description: p.Description,
			Items:       &genai.Schema{Type: scalarType(elem)},
		}
	}
	return &genai.Schema{Type: scalarType(p.Type), Description: p.Description}
}

func scalarType(name string) genai.Type {
	switch name {
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
