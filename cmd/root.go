package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mealpoint/possync/internal/agent"
	"github.com/mealpoint/possync/internal/models"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "possync",
	Short: "Point-of-sale order and inventory reconciliation agent",
	Long:  `possync keeps a restaurant POS device's local order, inventory and table state consistent with the remote backend: delta-based ingredient deduction with a grace period, daily order numbering with offline fallback, and a durable offline-to-online order sync queue.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		a, err := agent.New(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := a.Run(ctx); err != nil && err != context.Canceled {
			return err
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.json)")

	rootCmd.Flags().String("remote-base-url", "http://localhost:8080", "Base URL of the remote restaurant backend")
	rootCmd.Flags().String("redis-addr", "localhost:6379", "Address of the local redis store")
	rootCmd.Flags().String("namespace", "possync", "Key namespace in the local store")
	rootCmd.Flags().Duration("grace-period", 0, "Delay after an order save before deduction is eligible")
	rootCmd.Flags().Duration("scan-interval", 0, "How often eligible orders are scanned")
	rootCmd.Flags().Float64("tax-rate", 0.05, "Tax rate applied at billing")

	viper.BindPFlag("remote_base_url", rootCmd.Flags().Lookup("remote-base-url"))
	viper.BindPFlag("redis_addr", rootCmd.Flags().Lookup("redis-addr"))
	viper.BindPFlag("namespace", rootCmd.Flags().Lookup("namespace"))
	viper.BindPFlag("grace_period", rootCmd.Flags().Lookup("grace-period"))
	viper.BindPFlag("scan_interval", rootCmd.Flags().Lookup("scan-interval"))
	viper.BindPFlag("tax_rate", rootCmd.Flags().Lookup("tax-rate"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
