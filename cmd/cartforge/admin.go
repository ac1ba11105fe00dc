package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/cartforge/cartforge/internal/adapter/postgres"
	"github.com/cartforge/cartforge/internal/config"
	"github.com/cartforge/cartforge/internal/domain/tenant"
	"github.com/cartforge/cartforge/internal/domain/user"
	"github.com/cartforge/cartforge/internal/service"
)

// runAdmin dispatches admin subcommands (create-user, create-tenant, list-tenants).
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "create-user":
		return runAdminCreateUser(args[1:])
	case "create-tenant":
		return runAdminCreateTenant(args[1:])
	case "list-tenants":
		return runAdminListTenants(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: cartforge admin <command> [options]

Commands:
  create-user      Create a new user
  create-tenant    Create a new tenant
  list-tenants     List all tenants
  help             Show this help message

Examples:
  cartforge admin create-user --email ops@example.com --name "Ops" --super
  cartforge admin create-user --email staff@example.com --name "Staff" --tenant 3 --tenant-admin
  cartforge admin create-tenant --name "Acme Outdoor" --domain shop.acme.com
  cartforge admin list-tenants
`)
}

type adminDeps struct {
	auth    *service.AuthService
	tenants *service.TenantService
	cleanup func()
}

func loadAdminDeps() (*adminDeps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	store := postgres.NewStore(pool)
	return &adminDeps{
		auth:    service.NewAuthService(store, cfg.Auth),
		tenants: service.NewTenantService(store, nil, 0),
		cleanup: pool.Close,
	}, nil
}

func runAdminCreateUser(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	email := fs.String("email", "", "user email address (required)")
	name := fs.String("name", "", "user display name (required)")
	password := fs.String("password", "", "password (prompted if not provided)") //nolint:gosec // CLI flag
	super := fs.Bool("super", false, "grant the super-admin role")
	tenantID := fs.String("tenant", "", "tenant id for a membership")
	tenantAdmin := fs.Bool("tenant-admin", false, "grant tenant-admin within the membership tenant")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		return fmt.Errorf("--email is required")
	}
	if *name == "" {
		return fmt.Errorf("--name is required")
	}
	if *tenantAdmin && *tenantID == "" {
		return fmt.Errorf("--tenant-admin requires --tenant")
	}

	pass := *password
	if pass == "" {
		var err error
		pass, err = promptPassword("Password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if pass != confirm {
			return fmt.Errorf("passwords do not match")
		}
	}

	req := user.CreateRequest{
		Email:    *email,
		Name:     *name,
		Password: pass,
	}
	if *super {
		req.Roles = append(req.Roles, "super-admin")
	}
	if *tenantID != "" {
		m := user.Membership{Tenant: tenant.ParseID(*tenantID)}
		if *tenantAdmin {
			m.Roles = []string{"tenant-admin"}
		}
		req.Memberships = append(req.Memberships, m)
	}

	deps, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer deps.cleanup()

	u, err := deps.auth.Register(context.Background(), req)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(os.Stderr, "User created: %s (id=%s, roles=%s)\n", u.Email, u.ID, strings.Join(u.Roles, ","))
	return nil
}

func runAdminCreateTenant(args []string) error {
	fs := flag.NewFlagSet("create-tenant", flag.ContinueOnError)
	name := fs.String("name", "", "tenant display name (required)")
	domain := fs.String("domain", "", "storefront domain used for cart assignment")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	deps, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer deps.cleanup()

	t, err := deps.tenants.Create(context.Background(), tenant.CreateRequest{
		Name:   *name,
		Domain: *domain,
	})
	if err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Tenant created: %s (id=%s, domain=%s)\n", t.Name, t.ID, t.Domain)
	return nil
}

func runAdminListTenants(args []string) error {
	fs := flag.NewFlagSet("list-tenants", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	deps, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer deps.cleanup()

	tenants, err := deps.tenants.List(context.Background())
	if err != nil {
		return fmt.Errorf("list tenants: %w", err)
	}

	if len(tenants) == 0 {
		fmt.Println("No tenants found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tDOMAIN\tENABLED")
	for i := range tenants {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%t\n",
			tenants[i].ID, tenants[i].Name, tenants[i].Domain, tenants[i].Enabled)
	}
	return w.Flush()
}

// promptPassword reads a password from the terminal without echoing.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin)) //nolint:unconvert // int conversion needed on some platforms
	fmt.Fprintln(os.Stderr)                         // newline after password input
	if err != nil {
		return "", err
	}
	return string(b), nil
}
