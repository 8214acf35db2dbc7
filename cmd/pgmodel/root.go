package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgmodel"
	"github.com/jackc/pgmodel/ext/apdnumeric"
	"github.com/jackc/pgmodel/internal/structfile"
	"github.com/jackc/pgmodel/log/zapadapter"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type app struct {
	v       *viper.Viper
	session *pgmodel.Session
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "pgmodel",
		Short: "Decode and encode PostgreSQL composite values",
		Long: `pgmodel decodes and encodes the text form of PostgreSQL composite values using the entities
described in a YAML structure file.

Settings are read from flags, PGMODEL_* environment variables, a .env file and pgmodel.yaml.

Examples:

  pgmodel fields -s structures.yaml complex_fixture
  pgmodel decode -s structures.yaml complex_number '(1.5,2)'
  pgmodel encode -s structures.yaml complex_number '{"real": 1.5, "imaginary": 2}'
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default ./pgmodel.yaml)")
	flags.StringP("structure", "s", "", "YAML structure file")
	flags.String("log-level", "warn", "log level (trace, debug, info, warn, error, none)")
	flags.Bool("strict-records", false, "reject fields that are not declared when encoding")
	flags.Bool("apd", false, "decode numeric values with arbitrary precision including NaN and Infinity")

	a.v.BindPFlag("config", flags.Lookup("config"))
	a.v.BindPFlag("structure", flags.Lookup("structure"))
	a.v.BindPFlag("log_level", flags.Lookup("log-level"))
	a.v.BindPFlag("strict_records", flags.Lookup("strict-records"))
	a.v.BindPFlag("apd", flags.Lookup("apd"))

	rootCmd.AddCommand(newDecodeCmd(a))
	rootCmd.AddCommand(newEncodeCmd(a))
	rootCmd.AddCommand(newFieldsCmd(a))

	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	a.v.SetEnvPrefix("PGMODEL")
	a.v.AutomaticEnv()

	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
	} else {
		a.v.SetConfigName("pgmodel")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	logLevel, err := pgmodel.LogLevelFromString(a.v.GetString("log_level"))
	if err != nil {
		return err
	}

	a.session = pgmodel.NewSession(&pgmodel.Config{
		Logger:        zapadapter.NewLogger(newZapLogger(cmd.ErrOrStderr())),
		LogLevel:      logLevel,
		StrictRecords: a.v.GetBool("strict_records"),
	})
	if a.v.GetBool("apd") {
		apdnumeric.Register(a.session.TypeMap())
	}

	path := a.v.GetString("structure")
	if path == "" {
		return errors.New("no structure file given, use --structure or PGMODEL_STRUCTURE")
	}
	entities, err := structfile.Load(path)
	if err != nil {
		return err
	}
	structfile.Register(a.session, entities)

	return nil
}

func newZapLogger(w io.Writer) *zap.Logger {
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), zapcore.DebugLevel))
}
