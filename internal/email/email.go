package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/metrics"
	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/models"
)

const (
	charset = "UTF-8"

	// identityPageSize is the SES v2 maximum for ListEmailIdentities.
	identityPageSize = 1000
)

// SESAPI is the subset of the SES v2 client used here.
type SESAPI interface {
	ListEmailIdentities(ctx context.Context, in *sesv2.ListEmailIdentitiesInput, optFns ...func(*sesv2.Options)) (*sesv2.ListEmailIdentitiesOutput, error)
	CreateEmailIdentity(ctx context.Context, in *sesv2.CreateEmailIdentityInput, optFns ...func(*sesv2.Options)) (*sesv2.CreateEmailIdentityOutput, error)
	DeleteEmailIdentity(ctx context.Context, in *sesv2.DeleteEmailIdentityInput, optFns ...func(*sesv2.Options)) (*sesv2.DeleteEmailIdentityOutput, error)
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type SESClient struct {
	client SESAPI
	logger *zap.Logger
}

// NewSESClient builds a client on a real SES v2 client. endpoint is optional.
func NewSESClient(cfg aws.Config, endpoint string, logger *zap.Logger) *SESClient {
	client := sesv2.NewFromConfig(cfg, func(o *sesv2.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewSESClientWithAPI(client, logger)
}

func NewSESClientWithAPI(client SESAPI, logger *zap.Logger) *SESClient {
	return &SESClient{client: client, logger: logger.Named("email")}
}

// EnsureVerified reports whether addr may be used to send or receive mail.
// Every call that finds addr unverified issues one fresh verification
// request, whether SES has never seen the address or holds it as pending,
// failed or expired.
func (s *SESClient) EnsureVerified(ctx context.Context, addr string) (bool, error) {
	identity, found, err := s.findIdentity(ctx, addr)
	if err != nil {
		return false, err
	}
	if found && identity.VerificationStatus == types.VerificationStatusSuccess {
		return true, nil
	}

	if err := s.request(ctx, addr, identity, found); err != nil {
		return false, err
	}
	return false, nil
}

// RequestVerification asks SES to send its confirmation link to addr. It
// reports false, without contacting SES again, when addr is already verified.
func (s *SESClient) RequestVerification(ctx context.Context, addr string) (bool, error) {
	identity, found, err := s.findIdentity(ctx, addr)
	if err != nil {
		return false, err
	}
	if found && identity.VerificationStatus == types.VerificationStatusSuccess {
		s.logger.Info("identity already verified", zap.String("address", addr))
		return false, nil
	}

	if err := s.request(ctx, addr, identity, found); err != nil {
		return false, err
	}
	return true, nil
}

// request sends a verification link. SES only mails a link when an identity
// is created, so a known but unverified identity is deleted first.
func (s *SESClient) request(ctx context.Context, addr string, identity types.IdentityInfo, known bool) error {
	if known {
		s.logger.Info("resetting unverified identity",
			zap.String("address", addr),
			zap.String("status", string(identity.VerificationStatus)))

		_, err := s.client.DeleteEmailIdentity(ctx, &sesv2.DeleteEmailIdentityInput{
			EmailIdentity: identity.IdentityName,
		})
		var notFound *types.NotFoundException
		if err != nil && !errors.As(err, &notFound) {
			return fmt.Errorf("reset identity %s: %w", addr, err)
		}
	}

	_, err := s.client.CreateEmailIdentity(ctx, &sesv2.CreateEmailIdentityInput{
		EmailIdentity: aws.String(addr),
	})
	if err != nil {
		// Someone else registered it between our list and create, and SES
		// mailed the link for them.
		var exists *types.AlreadyExistsException
		if errors.As(err, &exists) {
			return nil
		}
		return fmt.Errorf("request verification for %s: %w", addr, err)
	}

	metrics.RecordVerificationRequest()
	s.logger.Info("verification requested", zap.String("address", addr))
	return nil
}

func (s *SESClient) findIdentity(ctx context.Context, addr string) (types.IdentityInfo, bool, error) {
	p := sesv2.NewListEmailIdentitiesPaginator(s.client, &sesv2.ListEmailIdentitiesInput{
		PageSize: aws.Int32(identityPageSize),
	})

	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return types.IdentityInfo{}, false, fmt.Errorf("list email identities: %w", err)
		}
		for _, id := range out.EmailIdentities {
			if id.IdentityType != types.IdentityTypeEmailAddress {
				continue
			}
			if strings.EqualFold(aws.ToString(id.IdentityName), addr) {
				return id, true, nil
			}
		}
	}
	return types.IdentityInfo{}, false, nil
}

// Send delivers m with HTML and text alternatives and returns the SES message id.
func (s *SESClient) Send(ctx context.Context, m models.Message) (string, error) {
	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.From),
		Destination: &types.Destination{
			ToAddresses: []string{m.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(m.Subject), Charset: aws.String(charset)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(m.HTML), Charset: aws.String(charset)},
					Text: &types.Content{Data: aws.String(m.Text), Charset: aws.String(charset)},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("send email to %s: %w", m.To, err)
	}

	id := aws.ToString(out.MessageId)
	s.logger.Info("email sent", zap.String("to", m.To), zap.String("message_id", id))
	return id, nil
}
