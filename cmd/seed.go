package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mealpoint/possync/internal/factories"
	"github.com/mealpoint/possync/internal/models"
	"github.com/mealpoint/possync/internal/repositories/redisstore"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the local store with generated demo menu and inventory data",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		itemCount, _ := cmd.Flags().GetInt("items")
		seed, _ := cmd.Flags().GetInt64("seed")

		store, err := redisstore.NewStore(cfg.RedisAddr, cfg.RedisPassword, cfg.Namespace)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		factory := factories.NewMenuItemFactory(seed)

		items := make([]*models.MenuItem, 0, itemCount)
		for i := 0; i < itemCount; i++ {
			items = append(items, factory.CreateMenuItem())
		}
		if err := redisstore.NewMenuRepository(store).SaveAll(ctx, items); err != nil {
			return fmt.Errorf("failed to seed menu: %w", err)
		}

		inventory := redisstore.NewInventoryRepository(store)
		records := factory.CreateInventory()
		for _, record := range records {
			if err := inventory.Save(ctx, record); err != nil {
				return fmt.Errorf("failed to seed inventory record %s: %w", record.Name, err)
			}
		}

		fmt.Printf("Seeded %d menu items and %d inventory records into %s\n", len(items), len(records), cfg.Namespace)
		return nil
	},
}

func init() {
	seedCmd.Flags().Int("items", 12, "Number of menu items to generate")
	seedCmd.Flags().Int64("seed", 42, "Random seed for generated data")
	rootCmd.AddCommand(seedCmd)
}
