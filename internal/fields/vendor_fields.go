package fields

import "github.com/JonMunkholm/VendorHub/internal/tier"

// Vendor categories offered in the Category drop-down.
var Categories = []string{
	"Navigation & Electronics",
	"Refit & Repair",
	"Interior Design",
	"Marine Engineering",
	"Yacht Services",
	"Safety & Security",
	"Other",
}

// Company size buckets.
var CompanySizes = []string{"1-10", "11-50", "51-200", "201-500", "500+"}

func field(name, column string, access tier.Level, t DataType, desc, example string) FieldMapping {
	return FieldMapping{
		Name:        name,
		Column:      column,
		Access:      access,
		Type:        t,
		Exportable:  true,
		Importable:  true,
		Description: desc,
		Example:     example,
	}
}

func (f FieldMapping) required() FieldMapping {
	f.Required = true
	return f
}

func (f FieldMapping) maxLength(n int) FieldMapping {
	f.Constraints.MaxLength = n
	return f
}

func (f FieldMapping) between(min, max float64) FieldMapping {
	f.Constraints.Min = ptr(min)
	f.Constraints.Max = ptr(max)
	return f
}

func (f FieldMapping) atLeast(min float64) FieldMapping {
	f.Constraints.Min = ptr(min)
	return f
}

func (f FieldMapping) oneOf(values ...string) FieldMapping {
	f.Constraints.AllowedValues = values
	return f
}

func (f FieldMapping) internal() FieldMapping {
	f.Exportable = false
	f.Importable = false
	return f
}

func vendorFields() []FieldMapping {
	founded := field("foundedYear", "Founded Year", tier.Tier1, TypeYear,
		"Year the company was founded", "1998").atLeast(MinFoundedYear)
	founded.Constraints.MaxCurrentYear = true

	return []FieldMapping{
		// Core profile, visible on every tier.
		field("name", "Company Name", tier.Free, TypeString,
			"Registered company name", "Oceanic Marine Systems").required().maxLength(255),
		field("description", "Description", tier.Free, TypeString,
			"Short company description shown on listings", "Navigation and bridge systems for superyachts").maxLength(5000),
		field("contactEmail", "Contact Email", tier.Free, TypeEmail,
			"Primary contact email address", "info@oceanicmarine.example").required().maxLength(255),
		field("contactPhone", "Contact Phone", tier.Free, TypePhone,
			"Primary contact phone number, international format", "+44 20 7946 0958").maxLength(30),
		field("category", "Category", tier.Free, TypeString,
			"Primary vendor category", "Navigation & Electronics").oneOf(Categories...),
		field("headquartersCountry", "Headquarters Country", tier.Free, TypeString,
			"Country of the head office", "United Kingdom").maxLength(100),
		field("logoUrl", "Logo URL", tier.Free, TypeURL,
			"Public URL of the company logo", "https://oceanicmarine.example/logo.png").maxLength(500),

		// Tier 1: extended profile and social proof.
		field("website", "Website", tier.Tier1, TypeURL,
			"Company website", "https://oceanicmarine.example").maxLength(500),
		founded,
		field("longDescription", "Long Description", tier.Tier1, TypeString,
			"Full company profile", "Founded in Southampton, we design and install integrated bridge systems.").maxLength(10000),
		field("linkedinUrl", "LinkedIn URL", tier.Tier1, TypeURL,
			"LinkedIn company page", "https://www.linkedin.com/company/oceanic-marine").maxLength(500),
		field("twitterUrl", "Twitter URL", tier.Tier1, TypeURL,
			"Twitter/X profile", "https://twitter.com/oceanicmarine").maxLength(500),
		field("facebookUrl", "Facebook URL", tier.Tier1, TypeURL,
			"Facebook page", "https://www.facebook.com/oceanicmarine").maxLength(500),
		field("instagramUrl", "Instagram URL", tier.Tier1, TypeURL,
			"Instagram profile", "https://www.instagram.com/oceanicmarine").maxLength(500),
		field("employeeCount", "Employee Count", tier.Tier1, TypeNumber,
			"Number of employees", "45").between(0, 1000000),
		field("companySize", "Company Size", tier.Tier1, TypeString,
			"Company size bracket", "11-50").oneOf(CompanySizes...),
		field("totalProjects", "Total Projects", tier.Tier1, TypeNumber,
			"Number of completed projects", "320").atLeast(0),
		field("certifications", "Certifications", tier.Tier1, TypeArray,
			"Certifications, separated by semicolons", "ISO 9001; Lloyd's Register Approved"),
		field("serviceAreas", "Service Areas", tier.Tier1, TypeArray,
			"Regions served, separated by semicolons", "Mediterranean; Caribbean"),
		field("languages", "Languages", tier.Tier1, TypeArray,
			"Languages spoken, separated by semicolons", "English; French; Italian"),
		field("videoUrl", "Video URL", tier.Tier1, TypeURL,
			"Introduction video", "https://www.youtube.com/watch?v=oceanic").maxLength(500),

		// Tier 2: portfolio and performance metrics.
		field("awards", "Awards", tier.Tier2, TypeArray,
			"Industry awards, separated by semicolons", "Superyacht Supplier of the Year 2021"),
		field("caseStudies", "Case Studies", tier.Tier2, TypeArray,
			"Case study titles, separated by semicolons", "Bridge refit for M/Y Aurora; Sensor upgrade for S/Y Zephyr"),
		field("teamMembers", "Team Members", tier.Tier2, TypeArray,
			"Key people as 'Name - Role', separated by semicolons", "Jane Smith - CEO; Tom Brown - CTO"),
		field("notableClients", "Notable Clients", tier.Tier2, TypeArray,
			"Notable clients or vessels, separated by semicolons", "M/Y Aurora; S/Y Zephyr"),
		field("clientSatisfactionScore", "Client Satisfaction Score", tier.Tier2, TypeNumber,
			"Client satisfaction, 0 to 100", "96").between(0, 100),
		field("repeatClientPercentage", "Repeat Client Percentage", tier.Tier2, TypeNumber,
			"Share of repeat clients, 0 to 100", "72").between(0, 100),
		field("averageResponseHours", "Average Response Time (Hours)", tier.Tier2, TypeNumber,
			"Average first-response time in hours", "4").between(0, 720),
		field("warrantyOffered", "Warranty Offered", tier.Tier2, TypeBoolean,
			"Whether a warranty is offered (Yes/No)", "Yes"),
		field("emergencySupport", "24/7 Emergency Support", tier.Tier2, TypeBoolean,
			"Round-the-clock emergency support (Yes/No)", "No"),
		field("brochureUrl", "Brochure URL", tier.Tier2, TypeURL,
			"Downloadable brochure", "https://oceanicmarine.example/brochure.pdf").maxLength(500),

		// Tier 3: promotion pack and editorial.
		field("editorialContent", "Editorial Content", tier.Tier3, TypeArray,
			"Editorial article titles, separated by semicolons", "Inside the bridge of tomorrow"),
		field("featuredInNewsletter", "Featured In Newsletter", tier.Tier3, TypeBoolean,
			"Include in the monthly newsletter (Yes/No)", "Yes"),
		field("socialMediaPromotion", "Social Media Promotion", tier.Tier3, TypeBoolean,
			"Promote on marketplace social channels (Yes/No)", "Yes"),
		field("searchHighlight", "Search Highlight", tier.Tier3, TypeBoolean,
			"Highlight in search results (Yes/No)", "No"),
		field("customBannerUrl", "Custom Banner URL", tier.Tier3, TypeURL,
			"Banner image for the profile page", "https://oceanicmarine.example/banner.jpg").maxLength(500),
		field("promotionStartDate", "Promotion Start Date", tier.Tier3, TypeDate,
			"First day of the promotion (YYYY-MM-DD)", "2025-01-01"),
		field("promotionEndDate", "Promotion End Date", tier.Tier3, TypeDate,
			"Last day of the promotion (YYYY-MM-DD)", "2025-12-31"),
		field("promotionalMessage", "Promotional Message", tier.Tier3, TypeString,
			"Short promotional tagline", "Award-winning bridge systems").maxLength(280),

		// Admin only; never part of vendor import or export.
		field("isVerified", "Verified", tier.Admin, TypeBoolean,
			"Vendor identity verified by staff", "Yes").internal(),
		field("isFeatured", "Featured", tier.Admin, TypeBoolean,
			"Featured on the marketplace home page", "No").internal(),
		field("adminNotes", "Admin Notes", tier.Admin, TypeString,
			"Internal staff notes", "").maxLength(2000).internal(),
		field("verifiedAt", "Verified At", tier.Admin, TypeDate,
			"Date of verification", "").internal(),
	}
}
