package api

import (
	"github.com/rflorenc/conversion-host-service/internal/inventory"
	"github.com/rflorenc/conversion-host-service/internal/models"
	"github.com/rflorenc/conversion-host-service/internal/queue"
	"github.com/rflorenc/conversion-host-service/internal/tasks"
	"github.com/rflorenc/conversion-host-service/internal/workflow"
)

// Server holds shared state for all API handlers.
type Server struct {
	Hosts     *models.ConversionHostStore
	Resolver  inventory.Resolver
	Inventory *inventory.Inventory
	Tasks     *tasks.Store
	Queue     queue.Queue
	Engine    *workflow.Engine
}
