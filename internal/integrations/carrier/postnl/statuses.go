package postnl

import (
	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/models"
)

// Event codes grouped by PostNL status category.
var eventTable = carrier.StatusTable{}.
	// 01, Zending voorgemeld
	Group(models.StatusPreadvice,
		"A01", "A10", "A71", "F01", "J93", "M03", "X80", "X81",
	).
	// 02, Zending in ontvangst genomen
	Group(models.StatusInTransit,
		"B01", "X40",
	).
	// 03, Zending afgehaald
	Group(models.StatusPickedUpByCourier,
		"B04",
	).
	Group(models.StatusPickedUp,
		"Z80",
	).
	// 04, Zending niet afgehaald
	Group(models.StatusUnknown,
		"D02", "D03", "D04", "D05", "D06", "D07", "D09", "D40", "D41", "H31", "X42", "X43",
		"Y80", "Y81",
	).
	// 05, Zending gesorteerd
	Group(models.StatusInTransit,
		"A08", "A09", "A11", "A12", "A13", "A27", "A28", "A29", "A30", "A31", "A32", "A34",
		"A35", "A42", "A43", "A99", "J01", "J06", "J07", "J09", "J10", "J14", "J16", "J17",
		"J22", "J24", "J26", "J27", "J28", "J33", "J36", "J61", "J90", "Q12", "Q13", "R01",
		"R06", "X01", "X02", "X07", "X08", "X11", "X14", "X17", "X20", "X21", "X22", "X50",
		"X51", "X68", "Y23", "Y24", "Y33", "Y35", "Y60", "Y61", "Y62",
	).
	// 06, Zending niet gesorteerd
	Group(models.StatusInWarehouse,
		"D08", "H10", "K01", "K02", "K03", "K30", "K92", "V01", "V06", "Y07",
	).
	// 07, Zending in distributieproces
	Group(models.StatusInTransit,
		"H32", "H35", "J05", "J08", "J29", "J39", "J41", "J42", "J45", "J47", "J48", "J55",
		"J94", "J95", "K14", "K15", "K70", "Q15", "S05", "T02", "X04", "X06", "X19", "X55",
		"Y05",
	).
	// 08, Zending niet afgeleverd
	Group(models.StatusDeliveryFailure,
		"H01", "H02", "H03", "H04", "H05", "H07", "H08", "H09", "H12", "H20", "H22", "H24",
		"H34", "H36", "H38", "H51", "H52", "J92", "K16", "K41", "K43", "Y01", "Y02", "Y03",
		"Y04", "Y08", "Y09", "Y10", "Y11", "Y12", "Y13", "Y14", "Y15", "Y16", "Y17", "Y18",
		"Y19", "Y20", "Y21", "Y22", "Y30", "Y31", "Y32", "Y36", "Y38", "Y39", "Y40", "Y41",
		"Y42", "Y43", "Y44", "Y50", "Y71",
	).
	// 09, Zending bij douane
	Group(models.StatusCustomsHeld,
		"J59", "X30", "X60", "X61", "X62", "X63", "X64", "X65", "X66", "Y25", "Y29",
	).
	// 11, Zending afgeleverd
	Group(models.StatusDelivered,
		"I01", "I03", "I05", "I06", "I07", "I09", "I10", "I11", "I12", "I22", "I23", "J63",
		"J91", "K91", "X24", "Y26", "Z01", "Z02", "Z03", "Z04", "Z05", "Z06", "Z08", "Z09",
	).
	// 12, Zending beschikbaar op afhaallocatie
	Group(models.StatusAwaitingPickup,
		"I08", "J02", "J12", "J23", "J52", "X05",
	).
	// 13, Voorgemeld: nog niet aangenomen
	Group(models.StatusPreadvice,
		"A20", "A21", "A22", "Q02", "X03",
	).
	// 14, Voorgemeld: definitief niet aangenomen
	Group(models.StatusPreadvice,
		"M01",
	).
	// 15, Manco collectie
	Group(models.StatusPickedUpByCourier,
		"G03",
	).
	// 16, Manco sortering
	Group(models.StatusInWarehouse,
		"G01", "G02", "G05",
	).
	// 17, Manco distributie
	Group(models.StatusOutForDelivery,
		"H23", "K90",
	).
	// 19, Zending afgekeurd
	Group(models.StatusDestroyed,
		"F03", "F04", "F05", "F06", "F07", "F08", "F10",
	).
	// 20, Zending in inklaringsproces
	Group(models.StatusCustoms,
		"A76", "X10", "X67",
	).
	// 21, Zending in voorraad
	Group(models.StatusInWarehouse,
		"V02", "V03", "V04", "V11", "V12", "V13", "V21", "V22", "V23", "V31", "V50",
	).
	// 22, Zending afgehaald van Postkantoor
	Group(models.StatusPickedUp,
		"I02",
	).
	// 23, Afhaalopdracht gecollecteerd
	Group(models.StatusPreadvice,
		"C01",
	).
	// 27, Retour Onbestelbaar
	Group(models.StatusReturningToSender,
		"H16", "H25",
	).
	// 28, Retour Foutieve aflevercode
	Group(models.StatusReturningToSender,
		"Y37",
	).
	// 31, Zending klaar voor transport naar land van bestemming
	Group(models.StatusCustomsSuccess,
		"A72", "A74", "A75", "X15",
	).
	// 99, Niet van toepassing
	Group(models.StatusUnknown,
		"A41", "A46", "A73", "A94", "B06", "C02", "H15", "H17", "H18", "H30", "J56", "J80",
		"K25", "K71", "P20", "P21", "P22", "P23", "P24", "Q14", "Q16", "Q17", "Q18", "Q19",
		"X16", "X52", "Y45", "Y46", "Y47", "Y48", "Y64", "Y65", "Y66",
	)

func codeToStatus(code string) models.Status {
	return eventTable.Lookup(CarrierID, code)
}
