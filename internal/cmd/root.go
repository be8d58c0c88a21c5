package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nutriscan/backend/config"
	"github.com/nutriscan/backend/internal/app"
	"github.com/nutriscan/backend/internal/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// assessor is what the assess command needs from the application
type assessor interface {
	Assess(ctx context.Context, request *domain.AssessmentRequest) (*domain.DisplayResult, error)
}

// runtime holds the constructors the commands use, replaceable in tests
type runtime struct {
	loadConfig  func() (*config.Config, error)
	newAssessor func(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (assessor, error)
	serve       func(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) error
}

func defaultRuntime() runtime {
	return runtime{
		loadConfig: config.Load,
		newAssessor: func(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (assessor, error) {
			application, err := app.New(ctx, cfg, logger)
			if err != nil {
				return nil, err
			}
			return application.Service, nil
		},
		serve: func(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) error {
			application, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			return application.Serve(ctx)
		},
	}
}

// NewRootCmd builds the nutriscan command tree
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultRuntime())
}

func newRootCmd(rt runtime) *cobra.Command {
	root := &cobra.Command{
		Use:   "nutriscan",
		Short: "Personalised food product assessments",
		Long: `NutriScan looks up a packaged food product by barcode on Open Food Facts,
scores it, and asks a language model for a personalised assessment against
a dietary profile.

Commands:
  serve    run the HTTP API
  assess   assess one product from the command line and print JSON`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(rt), newAssessCmd(rt))
	return root
}

func newServeCmd(rt runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rt.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := config.NewLogger(cfg.Server.Environment, cfg.Log.Level)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return rt.serve(ctx, cfg, &logger)
		},
	}
}

type assessFlags struct {
	barcode string
	image   string
	profile domain.UserDietaryProfile
}

func newAssessCmd(rt runtime) *cobra.Command {
	var flags assessFlags

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Assess a product for a dietary profile",
		Example: `  nutriscan assess --barcode 3017620422003 --allergies hazelnut
  nutriscan assess --image label.jpg --clinical-conditions "type 2 diabetes"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := flags.request()
			if err != nil {
				return err
			}

			cfg, err := rt.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			// logs go to stderr so stdout stays valid JSON
			logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).Level(zerolog.WarnLevel)
			if lvl, err := zerolog.ParseLevel(cfg.Log.Level); err == nil && lvl > zerolog.WarnLevel {
				logger = logger.Level(lvl)
			}

			service, err := rt.newAssessor(cmd.Context(), cfg, &logger)
			if err != nil {
				return err
			}

			result, err := service.Assess(cmd.Context(), request)
			if result == nil {
				return err
			}
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.barcode, "barcode", "b", "", "product barcode (EAN/UPC)")
	f.StringVarP(&flags.image, "image", "i", "", "PNG or JPEG photo of the barcode")
	f.StringVar(&flags.profile.ActivityLevel, "activity-level", "", "activity level")
	f.StringVar(&flags.profile.DietaryStyle, "dietary-style", "", "dietary style, e.g. vegan")
	f.StringVar(&flags.profile.ClinicalConditions, "clinical-conditions", "", "clinical conditions")
	f.StringVar(&flags.profile.Medications, "medications", "", "current medications")
	f.StringVar(&flags.profile.Allergies, "allergies", "", "allergies")
	f.StringVar(&flags.profile.Intolerances, "intolerances", "", "intolerances")
	f.StringVar(&flags.profile.Dislikes, "dislikes", "", "disliked ingredients")
	f.StringVar(&flags.profile.EnvironmentalPref, "environmental-pref", "", "environmental preferences")
	f.StringVar(&flags.profile.EcoScoreConcernLevel, "eco-concern", "", "environmental concern level")

	return cmd
}

func (f assessFlags) request() (*domain.AssessmentRequest, error) {
	request := &domain.AssessmentRequest{
		Profile: f.profile.Trimmed(),
		Barcode: f.barcode,
	}
	if f.image != "" {
		data, err := os.ReadFile(f.image)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		request.Upload = &domain.Upload{Filename: filepath.Base(f.image), Data: data}
	}
	if request.Upload == nil && request.Barcode == "" {
		return nil, errors.New("either --barcode or --image is required")
	}
	return request, nil
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
