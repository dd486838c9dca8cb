// check-zone is a field diagnostic: given a lat/lon, it prints every active
// zone, whether the fix lands inside it, and how far the fix is from each
// boundary. Useful when a worker reports "it says I'm outside" from a spot
// that should be covered.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/MuniTrack/MT-Backend/internal/config"
	"github.com/MuniTrack/MT-Backend/internal/geomath"
	"github.com/joho/godotenv"
	"github.com/lib/pq"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	lat := flag.Float64("lat", 0, "latitude of the fix")
	lon := flag.Float64("lon", 0, "longitude of the fix")
	flag.Parse()

	godotenv.Load(".env.local")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT name, boundary
		FROM fieldops.zones
		WHERE active = true
		ORDER BY name
	`)
	if err != nil {
		log.Fatalf("Query error: %v", err)
	}
	defer rows.Close()

	pt := geomath.Point{Lat: *lat, Lon: *lon}
	fmt.Printf("Fix: (%.6f, %.6f), tolerance %.6f degrees\n\n", *lat, *lon, cfg.BufferToleranceDegrees)

	matched := 0
	for rows.Next() {
		var name string
		var boundary pq.Float64Array
		if err := rows.Scan(&name, &boundary); err != nil {
			log.Fatalf("Scan error: %v", err)
		}

		ring := make(geomath.Ring, 0, len(boundary)/2)
		for i := 0; i+1 < len(boundary); i += 2 {
			ring = append(ring, geomath.Point{Lat: boundary[i], Lon: boundary[i+1]})
		}

		inside := geomath.ContainsWithTolerance(ring, pt, cfg.BufferToleranceDegrees)
		if inside {
			matched++
		}
		fmt.Printf("  %-24s inside=%-5v boundary_distance=%.6f deg\n",
			name, inside, ring.DistanceToBoundaryDegrees(pt))
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("Rows error: %v", err)
	}

	fmt.Printf("\n%d zone(s) match this fix\n", matched)
}
