package claims

import "sort"

// WarrantyClaim is the structured claim submitted for prediction or returned
// by document extraction. Field names follow the backend wire format.
type WarrantyClaim struct {
	ClaimNumber      string          `json:"ClaimNumber,omitempty" yaml:"claim_number,omitempty"`
	VIN              string          `json:"VIN,omitempty" yaml:"vin,omitempty"`
	PurchasingYear   int             `json:"PurchasingYear,omitempty" yaml:"purchasing_year,omitempty"`
	RepairDate       string          `json:"RepairDate,omitempty" yaml:"repair_date,omitempty"`
	MileageIn        int             `json:"MiledgeIn,omitempty" yaml:"mileage_in,omitempty"`
	MileageOut       int             `json:"MiledgeOut,omitempty" yaml:"mileage_out,omitempty"`
	CustomerName     string          `json:"CustomerName,omitempty" yaml:"customer_name,omitempty"`
	RONumber         string          `json:"RO_number,omitempty" yaml:"ro_number,omitempty"`
	RODescription    string          `json:"RO_Description,omitempty" yaml:"ro_description,omitempty"`
	PNMC             string          `json:"PNMC,omitempty" yaml:"pnmc,omitempty"`
	PNMCQuantity     int             `json:"PNMC_Quantity,omitempty" yaml:"pnmc_quantity,omitempty"`
	WarrantyTypeCode string          `json:"WarrantyType_Code,omitempty" yaml:"warranty_type_code,omitempty"`
	SymptomCode      string          `json:"SymptomCode,omitempty" yaml:"symptom_code,omitempty"`
	DamageCode       string          `json:"DamageCode,omitempty" yaml:"damage_code,omitempty"`
	RelatedParts     []string        `json:"RelatedParts,omitempty" yaml:"related_parts,omitempty"`
	RepairLocation   []string        `json:"RepairLocation,omitempty" yaml:"repair_location,omitempty"`
	ModelName        string          `json:"ModelName,omitempty" yaml:"model_name,omitempty"`
	PartsUsed        []PartDetail    `json:"PartsUsed,omitempty" yaml:"parts_used,omitempty"`
	LaborOpDetails   []LaborOpDetail `json:"LaborOpDetails,omitempty" yaml:"labor_op_details,omitempty"`
	ServiceAdvisor   string          `json:"ServiceAdvisor,omitempty" yaml:"service_advisor,omitempty"`
	DealerCode       string          `json:"DealerCode,omitempty" yaml:"dealer_code,omitempty"`
	DealerName       string          `json:"DealerName,omitempty" yaml:"dealer_name,omitempty"`
	DealerAddress    string          `json:"DealerAddress,omitempty" yaml:"dealer_address,omitempty"`
	EstimatedAmount  float64         `json:"EstimatedAmount,omitempty" yaml:"estimated_amount,omitempty"`
	RepairNotes      string          `json:"RepairNotes,omitempty" yaml:"repair_notes,omitempty"`
	ROOpenDate       string          `json:"RO_open_date,omitempty" yaml:"ro_open_date,omitempty"`
	SubletAmount     float64         `json:"SubletAmount" yaml:"sublet_amount"`
	SubletCode       string          `json:"SubletCode,omitempty" yaml:"sublet_code,omitempty"`
}

// PartDetail is a part used in a repair.
type PartDetail struct {
	Name     string  `json:"part_name,omitempty" yaml:"name,omitempty"`
	Quantity int     `json:"part_quantity,omitempty" yaml:"quantity,omitempty"`
	Price    float64 `json:"part_price,omitempty" yaml:"price,omitempty"`
}

// LaborOpDetail is a labor operation performed during a repair.
type LaborOpDetail struct {
	Code         string  `json:"LaborOpCode,omitempty" yaml:"code,omitempty"`
	Hours        float64 `json:"LaborHours,omitempty" yaml:"hours,omitempty"`
	TechnicianID string  `json:"TechnicianID,omitempty" yaml:"technician_id,omitempty"`
}

// LaborHours sums the hours of every labor operation.
func (c WarrantyClaim) LaborHours() float64 {
	var total float64
	for _, op := range c.LaborOpDetails {
		total += op.Hours
	}
	return total
}

// Prediction is the predicted outcome of a warranty claim.
type Prediction struct {
	WarrantyStatus            string  `json:"warranty_status"`
	WarrantyStatusProbability float64 `json:"warranty_status_probability"`
	ReasonCode                string  `json:"reason_code"`
	ReasonCodeProbability     float64 `json:"reason_code_probability"`
}

// StatusName expands the single letter warranty status.
func (p Prediction) StatusName() string {
	return StatusName(p.WarrantyStatus)
}

// StatusName maps a claim status code to its display name.
func StatusName(code string) string {
	switch code {
	case "A":
		return "Approved"
	case "R":
		return "Rejected"
	case "P":
		return "Pending"
	case "T":
		return "Total"
	default:
		return code
	}
}

// Answer is a markdown answer to a natural language question.
type Answer struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Table is the tabular result of a natural language query.
type Table struct {
	Type string           `json:"type"`
	Rows []map[string]any `json:"content"`
}

// Columns returns the column names in first-seen order.
func (t Table) Columns() []string {
	seen := map[string]bool{}
	var cols []string
	for _, row := range t.Rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			if !seen[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			seen[k] = true
			cols = append(cols, k)
		}
	}
	return cols
}
