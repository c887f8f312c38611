package repository

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type Repositories struct {
	// pgxpool repositories
	UserRepo    UserRepository
	LeadRepo    LeadRepository
	ProjectRepo ProjectRepository
	ProductRepo ProductRepository

	// sqlx repositories
	DesignRepo    DesignRepository
	QuotationRepo QuotationRepository

	// MongoDB repositories
	MessageRepo MessageRepository
}

func NewRepositories(pool *pgxpool.Pool, db *sql.DB, mongoDB *mongo.Database) *Repositories {
	sqlxDB := sqlx.NewDb(db, "pgx")

	return &Repositories{
		UserRepo:    NewUserRepository(pool),
		LeadRepo:    NewLeadRepository(pool),
		ProjectRepo: NewProjectRepository(pool),
		ProductRepo: NewProductRepository(pool),

		DesignRepo:    NewDesignRepository(sqlxDB),
		QuotationRepo: NewQuotationRepository(sqlxDB),

		MessageRepo: NewMessageRepository(mongoDB),
	}
}
