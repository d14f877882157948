package main

import (
	cache "candle_feed/internal/modules/cache/service"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var latestCmd = &cobra.Command{
	Use:   "latest SYMBOL",
	Short: "Print the latest cached candle for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		sample, err := cache.NewCandleCache(rdb).LatestCandle(cmd.Context(), strings.ToUpper(args[0]))
		if err != nil {
			return err
		}
		body, err := sample.Marshal()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(latestCmd)
}
