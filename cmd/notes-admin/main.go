// Command notes-admin manages accounts and the schema of a notes-service database.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"gorm.io/gorm"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/config"
	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/database"
	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/service"
	"github.com/DoctorDictator/rdbbms-project-2025-sub000/pkg/logger"
)

const usage = `usage: notes-admin <command> [flags]

commands:
  migrate       create or update the schema
  create-user   add an account (--username, --password, --email, --name, --admin)
  promote       give a user the ADMIN role (--username)
  demote        give a user the USER role (--username)
`

type command func(ctx context.Context, svc *service.Service, db *gorm.DB, args []string) error

var commands = map[string]command{
	"migrate":     migrate,
	"create-user": createUser,
	"promote":     setRole(database.RoleAdmin),
	"demote":      setRole(database.RoleUser),
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err := config.LoadEnvFile(os.Getenv("ENV_FILE")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Fatal("can't load env file")
	}
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	l := logger.New(cfg.LogLevel, logger.FormatText).WithField("command", os.Args[1])

	db, err := database.NewDb(database.Options{
		Driver: cfg.DBDriver,
		DSN:    cfg.GetDSN(),
	})
	if err != nil {
		l.WithError(err).Fatal("failed to open database")
	}
	defer func() {
		_ = database.Close(db)
	}()

	svc := service.New(database.NewRepository(db), l)
	if err := cmd(context.Background(), svc, db, os.Args[2:]); err != nil {
		l.WithError(err).Error("command failed")
		_ = database.Close(db)
		os.Exit(1)
	}
}

func migrate(_ context.Context, _ *service.Service, db *gorm.DB, _ []string) error {
	return database.Migrate(db)
}

func createUser(ctx context.Context, svc *service.Service, db *gorm.DB, args []string) error {
	flags := flag.NewFlagSet("create-user", flag.ContinueOnError)
	username := flags.String("username", "", "login name")
	password := flags.String("password", "", "password, at least 8 characters")
	email := flags.String("email", "", "email address")
	name := flags.String("name", "", "display name")
	admin := flags.Bool("admin", false, "grant the ADMIN role")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return errors.New("--username and --password are required")
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	role := database.RoleUser
	if *admin {
		role = database.RoleAdmin
	}
	u, err := svc.Register(ctx, service.RegisterInput{
		Username: *username,
		Password: *password,
		Email:    *email,
		Name:     *name,
		Role:     role,
	})
	if err != nil {
		return err
	}
	fmt.Printf("created %s (%s) with role %s\n", u.Username, u.ID, u.Role)
	return nil
}

func setRole(role database.Role) command {
	return func(ctx context.Context, svc *service.Service, _ *gorm.DB, args []string) error {
		flags := flag.NewFlagSet(string(role), flag.ContinueOnError)
		username := flags.String("username", "", "user to change")
		if err := flags.Parse(args); err != nil {
			return err
		}
		if *username == "" {
			return errors.New("--username is required")
		}
		if err := svc.SetRole(ctx, *username, role); err != nil {
			return err
		}
		fmt.Printf("%s now has role %s\n", *username, role)
		return nil
	}
}
