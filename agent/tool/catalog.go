package tool

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Montebello-TourBot/agent/contract"
)

const ToolRegisterUser = "register_user"

type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

// Build returns the tool schemas bound to the dialogue model plus the
// executor that backs them.
func Build(store contractx.CapacityStore, writer contractx.RegistrationWriter) ([]*schema.ToolInfo, Executor) {
	return Infos(), NewExecutor(store, writer)
}

func NewExecutor(store contractx.CapacityStore, writer contractx.RegistrationWriter) Executor {
	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		switch tool {
		case ToolRegisterUser:
			return executeRegisterUser(ctx, store, writer, args)
		default:
			return contractx.ToolResult{
				Tool:  tool,
				Error: fmt.Sprintf("tool=%s is not available", tool),
			}, nil
		}
	}
}

func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolRegisterUser,
			Desc: "Registra a una familia para un tour informativo del Colegio Montebello.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"name":         {Type: schema.String, Desc: "Nombre completo del representante", Required: true},
				"email":        {Type: schema.String, Desc: "Correo electrónico de contacto", Required: true},
				"tour_date_id": {Type: schema.Integer, Desc: "ID de la fecha de tour elegida", Required: true},
				"phone":        {Type: schema.String, Desc: "Teléfono de contacto"},
				"grade":        {Type: schema.String, Desc: "Grados de interés, separados por coma"},
			}),
		},
	}
}
