package main

import (
	"flag"
	"fmt"
	"log"

	"forum_go/internal/core/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var down bool
	flag.BoolVar(&down, "down", false, "roll back one migration instead of applying all")
	flag.Parse()

	if err := config.Init("."); err != nil {
		log.Fatal("failed to load config: ", err)
	}
	db := config.Get().Database

	dsn := fmt.Sprintf("mysql://%s:%s@tcp(%s:%d)/%s?multiStatements=true",
		db.Username, db.Password, db.Host, db.Port, db.Name)

	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		log.Fatal(err)
	}

	if down {
		if err := m.Steps(-1); err != nil && err != migrate.ErrNoChange {
			log.Fatal(err)
		}
		log.Println("rollback successful")
		return
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal(err)
	}
	log.Println("migration successful")
}
