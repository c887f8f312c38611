// internal/seed/seed.go
package seed

import (
	"context"
	"log"
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const adminEmail = "admin@orainterior.io"

// SeedData fills an empty development database with a small marketplace:
// one admin, two designers, two customers, a catalog and two open leads.
func SeedData(repos *repository.Repositories) {
	ctx := context.Background()

	if existing, _ := repos.UserRepo.FindByEmail(ctx, adminEmail); existing != nil {
		log.Println("[Seed] Data already exists, skipping...")
		return
	}

	log.Println("[Seed] 🌱 Creating initial marketplace data...")

	// ============================================
	// CREATE USERS
	// ============================================
	password, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	newUser := func(email, name, role string) *repository.User {
		u := &repository.User{Email: email, Password: string(password), Name: name, Role: role}
		if err := repos.UserRepo.Create(ctx, u); err != nil {
			log.Printf("[Seed] ⚠️ Failed to create %s: %v", email, err)
		}
		return u
	}

	newUser(adminEmail, "Marga Ghale", types.RoleAdmin)
	sita := newUser("sita.designs@orainterior.io", "Sita Shrestha", types.RoleDesigner)
	arjun := newUser("arjun.studio@orainterior.io", "Arjun Thapa", types.RoleDesigner)
	bipin := newUser("bipin.dhimal@example.com", "Bipin Dhimal", types.RoleUser)
	kritim := newUser("kritim.kafle@example.com", "Kritim Kafle", types.RoleUser)

	log.Printf("✅ Created 5 users: 1 admin, 2 designers, 2 customers")

	// ============================================
	// CREATE CATALOG
	// ============================================
	products := []*repository.Product{
		{Name: "Linen Three-Seat Sofa", Category: "furniture", Price: decimal.RequireFromString("1299.00"), Stock: 8},
		{Name: "Walnut Coffee Table", Category: "furniture", Price: decimal.RequireFromString("449.50"), Stock: 12},
		{Name: "Brass Arc Floor Lamp", Category: "lighting", Price: decimal.RequireFromString("219.99"), Stock: 20},
		{Name: "Wool Area Rug 200x300", Category: "textiles", Price: decimal.RequireFromString("389.00"), Stock: 5},
		{Name: "Oak Platform Bed", Category: "furniture", Price: decimal.RequireFromString("1650.00"), Stock: 3},
		{Name: "Ceramic Pendant Light", Category: "lighting", Price: decimal.RequireFromString("129.00"), Stock: 0},
	}
	for _, p := range products {
		if err := repos.ProductRepo.Create(ctx, p); err != nil {
			log.Printf("[Seed] ⚠️ Failed to create product %s: %v", p.Name, err)
		}
	}

	designs := []*repository.Design{
		{DesignerID: sita.ID, Title: "Warm Minimal Living", RoomType: types.RoomLivingRoom, Style: stringPtr("minimal"),
			Images: []string{"designs/warm-minimal-1.jpg"}, Price: decimal.RequireFromString("2500"), Status: types.DesignApproved},
		{DesignerID: sita.ID, Title: "Scandi Bedroom Retreat", RoomType: types.RoomBedroom, Style: stringPtr("scandinavian"),
			Images: []string{"designs/scandi-bed-1.jpg"}, Price: decimal.RequireFromString("1800"), Status: types.DesignApproved},
		{DesignerID: arjun.ID, Title: "Industrial Loft Kitchen", RoomType: types.RoomKitchen, Style: stringPtr("industrial"),
			Images: []string{"designs/loft-kitchen-1.jpg"}, Price: decimal.RequireFromString("3200"), Status: types.DesignApproved},
		{DesignerID: arjun.ID, Title: "Home Office Nook", RoomType: types.RoomOffice,
			Price: decimal.RequireFromString("900"), Status: types.DesignPending},
	}
	for _, d := range designs {
		if err := repos.DesignRepo.Create(ctx, d); err != nil {
			log.Printf("[Seed] ⚠️ Failed to create design %s: %v", d.Title, err)
		}
	}

	log.Printf("✅ Created %d products and %d designs", len(products), len(designs))

	// ============================================
	// CREATE LEADS
	// ============================================
	now := time.Now()
	ref := func(p *repository.Product) repository.ProductRef {
		return repository.ProductRef{ID: p.ID, Name: p.Name, Price: p.Price, Thumbnail: p.Thumbnail, Stock: p.Stock}
	}
	budget := decimal.RequireFromString("6000")

	leads := []*repository.Lead{
		{
			CustomerID:    &bipin.ID,
			CustomerName:  bipin.Name,
			CustomerEmail: bipin.Email,
			DesignerID:    &sita.ID,
			Status:        types.LeadConsulting,
			Priority:      types.PriorityHigh,
			Budget:        &budget,
			LastContactAt: now.Add(-2 * time.Hour),
			DesignRequests: repository.DesignRequests{
				types.RoomLivingRoom: {{
					DesignID:    designs[0].ID,
					DesignTitle: designs[0].Title,
					DesignImage: designs[0].Images[0],
					RequestedAt: now.Add(-3 * 24 * time.Hour),
					Notes:       stringPtr("Can we keep the existing bookshelf?"),
					Products: []repository.ProductItem{
						{Product: ref(products[0]), Quantity: 1},
						{Product: ref(products[1]), Quantity: 1},
						{Product: ref(products[2]), Quantity: 2},
					},
				}},
				types.RoomBedroom: {{
					DesignID:    designs[1].ID,
					DesignTitle: designs[1].Title,
					DesignImage: designs[1].Images[0],
					RequestedAt: now.Add(-2 * 24 * time.Hour),
					Products:    []repository.ProductItem{{Product: ref(products[4]), Quantity: 1}},
				}},
			},
		},
		{
			CustomerID:    &kritim.ID,
			CustomerName:  kritim.Name,
			CustomerEmail: kritim.Email,
			DesignerID:    &arjun.ID,
			Status:        types.LeadNew,
			LastContactAt: now.Add(-30 * time.Minute),
			DesignRequests: repository.DesignRequests{
				types.RoomKitchen: {{
					DesignID:    designs[2].ID,
					DesignTitle: designs[2].Title,
					DesignImage: designs[2].Images[0],
					RequestedAt: now.Add(-30 * time.Minute),
				}},
			},
		},
	}
	for _, l := range leads {
		if err := repos.LeadRepo.Create(ctx, l); err != nil {
			log.Printf("[Seed] ⚠️ Failed to create lead for %s: %v", l.CustomerName, err)
		}
	}

	log.Printf("✅ Created %d leads", len(leads))
}

// Helper function to create string pointers
func stringPtr(s string) *string {
	return &s
}
