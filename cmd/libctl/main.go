// libctl is the operator CLI: it creates admin accounts and seeds the
// catalog with sample data.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/avdeev/library-app/internal/config"
	"github.com/avdeev/library-app/internal/domain"
	"github.com/avdeev/library-app/internal/repository"
	"github.com/avdeev/library-app/internal/repository/postgres"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "libctl",
		Short: "Library administration tool",
	}

	rootCmd.AddCommand(createAdminCmd(), seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func createAdminCmd() *cobra.Command {
	var email, firstName, lastName string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin user (prompts for a password)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}

			password, err := readPassword("Enter admin password: ")
			if err != nil {
				return err
			}
			confirm, err := readPassword("Confirm admin password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return fmt.Errorf("passwords do not match")
			}
			if len(password) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}

			repos, err := connect()
			if err != nil {
				return err
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}

			user := &domain.User{
				ID:           uuid.New(),
				Email:        email,
				PasswordHash: string(hash),
				FirstName:    firstName,
				LastName:     lastName,
				Role:         domain.RoleAdmin,
			}

			if err := repos.User.Create(context.Background(), user); err != nil {
				return fmt.Errorf("creating admin: %w", err)
			}

			fmt.Printf("Admin %s created (id %s)\n", email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&firstName, "first-name", "", "admin first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "admin last name")

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the catalog with sample authors and books",
		RunE: func(cmd *cobra.Command, args []string) error {
			repos, err := connect()
			if err != nil {
				return err
			}
			ctx := context.Background()

			for _, s := range sampleCatalog {
				author := s.author
				if err := repos.Author.Create(ctx, &author); err != nil {
					return fmt.Errorf("seeding author %s: %w", author.FullName(), err)
				}
				for _, b := range s.books {
					book := b
					book.AuthorID = author.ID
					if err := repos.Book.Create(ctx, &book); err != nil {
						return fmt.Errorf("seeding book %s: %w", book.Title, err)
					}
					log.Printf("seeded %q by %s", book.Title, author.FullName())
				}
			}

			fmt.Println("Catalog seeded")
			return nil
		},
	}
}

func connect() (*repository.Repositories, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return postgres.NewRepositories(db), nil
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

var sampleCatalog = []struct {
	author domain.Author
	books  []domain.Book
}{
	{
		author: domain.Author{FirstName: "Leo", LastName: "Tolstoy", Country: "Russia", BirthDate: date(1828, 9, 9)},
		books: []domain.Book{
			{ISBN: "9780199232765", Title: "War and Peace", Genre: "Novel", Description: "An epic of the Napoleonic wars."},
			{ISBN: "9780143035008", Title: "Anna Karenina", Genre: "Novel", Description: "A tragedy of love and society."},
		},
	},
	{
		author: domain.Author{FirstName: "Fyodor", LastName: "Dostoevsky", Country: "Russia", BirthDate: date(1821, 11, 11)},
		books: []domain.Book{
			{ISBN: "9780679734505", Title: "Crime and Punishment", Genre: "Novel", Description: "A student, a crime, a conscience."},
		},
	},
	{
		author: domain.Author{FirstName: "Jane", LastName: "Austen", Country: "England", BirthDate: date(1775, 12, 16)},
		books: []domain.Book{
			{ISBN: "9780141439518", Title: "Pride and Prejudice", Genre: "Romance", Description: "Manners, marriage and Mr. Darcy."},
		},
	},
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
