package generator

var firstNames = []string{
	"Jean", "Marie", "Pierre", "Sophie", "Luc", "Nathalie", "Marc", "Isabelle",
	"Thomas", "Julie", "Nicolas", "Camille", "Ahmed", "Fatima", "Jan", "Els",
	"Pieter", "Anke", "Youssef", "Sarah",
}

var lastNames = []string{
	"Dupont", "Peeters", "Janssens", "Maes", "Jacobs", "Mertens", "Willems", "Claes",
	"Lambert", "Dubois", "Martin", "Leroy", "Goossens", "Wouters", "De Smet", "Renard",
	"El Amrani", "Vermeulen", "Lejeune", "Simon",
}
