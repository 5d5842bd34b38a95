package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/chachabrian/foodshare-backend/internal/config"
	"github.com/chachabrian/foodshare-backend/internal/database"
	"github.com/chachabrian/foodshare-backend/internal/ingest"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	s3Prefix string

	rootCmd = &cobra.Command{
		Use:   "loader",
		Short: "Load the food donation CSV exports into the database",
		Long: `Clears the providers, receivers, food_listings and claims tables and
reloads them from providers_data.csv, receivers_data.csv,
food_listings_data.csv and claims_data.csv. Running it again yields the
same data.`,
		RunE: runLoad,
	}
)

func init() {
	rootCmd.Flags().StringVar(&dataDir, "dir", "data", "local folder holding the CSV files")
	rootCmd.Flags().StringVar(&s3Prefix, "s3-prefix", "", "read the CSV files from this prefix of AWS_S3_BUCKET instead of --dir")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}

	var src ingest.Source = ingest.DirSource{Dir: dataDir}
	if cmd.Flags().Changed("s3-prefix") {
		s3src, err := ingest.NewS3Source(ingest.S3Config{
			Region:    cfg.AWSRegion,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
			Bucket:    cfg.AWSS3Bucket,
			Prefix:    s3Prefix,
		})
		if err != nil {
			return err
		}
		src = s3src
	}

	if _, err := ingest.NewLoader(db, src).Load(ctx); err != nil {
		return err
	}
	log.Println("Data loading completed")
	return nil
}
