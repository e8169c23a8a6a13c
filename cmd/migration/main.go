package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/contacts-api/internal/config"
	"gitlab.com/dirk.krummacker/contacts-api/internal/store"
)

// Only the MySQL backend needs a schema; MongoDB creates the collection on first insert.
//
// Usage example on the command line:
// > DBDRIVER=mysql DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 go run main.go -file=../../scripts/database.sql
func main() {
	filePtr := flag.String("file", "database.sql", "the sql file to execute")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if cfg.DBDriver != "mysql" {
		fmt.Printf("nothing to migrate for database driver %q\n", cfg.DBDriver)
		return
	}
	sqlDB, err := store.OpenMySQL(cfg.DBHost, cfg.DBUser, cfg.DBPwd, cfg.DBName)
	if err != nil {
		panic(err)
	}
	db := sqlx.NewDb(sqlDB, "mysql")
	defer db.Close()

	readFile, err := os.Open(*filePtr) // nosemgrep
	if err != nil {
		panic(err)
	}
	defer readFile.Close()

	fileScanner := bufio.NewScanner(readFile)
	fileScanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	for fileScanner.Scan() {
		line := fileScanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.Contains(line, ";") {
			sql := builder.String()
			db.MustExec(sql)
			builder = strings.Builder{}
		}
	}
}
