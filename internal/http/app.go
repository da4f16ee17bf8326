package httpapi

import (
	"context"

	"go.uber.org/zap"

	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/models"
	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/report"
)

// AddressStore reads and replaces the report addresses.
type AddressStore interface {
	Get(ctx context.Context, role models.Role) (string, error)
	Put(ctx context.Context, role models.Role, addr string) error
}

type VerificationRequester interface {
	RequestVerification(ctx context.Context, addr string) (bool, error)
}

type Previewer interface {
	Preview(ctx context.Context) (report.Report, error)
}

type App struct {
	Addresses  AddressStore
	Identities VerificationRequester
	Reports    Previewer
	Logger     *zap.Logger
}
